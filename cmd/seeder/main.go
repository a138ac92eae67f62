package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"

	retrieval "github.com/expatwise/retrieval"
	"github.com/expatwise/retrieval/ai"
	"github.com/expatwise/retrieval/core"
	"github.com/expatwise/retrieval/reindex"
	"github.com/expatwise/retrieval/router"
	"github.com/expatwise/retrieval/storage"
)

// seedDoc is one knowledge-base entry, either from the built-in corpus or
// from a JSONL file (one object per line).
type seedDoc struct {
	Content   string            `json:"content"`
	Partition string            `json:"partition"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

var corpus = []seedDoc{
	// Visas
	{Content: "A standard residence visa is valid for two years and requires a medical fitness test, Emirates ID biometrics, and an active sponsor.", Partition: router.PartitionVisas},
	{Content: "The golden visa grants ten years of residency to investors, entrepreneurs, and specialized talents without a local sponsor.", Partition: router.PartitionVisas},
	{Content: "Work permits must be applied for by the employer before the employee enters the country; entry on a tourist visa does not allow employment.", Partition: router.PartitionVisas},
	{Content: "Dependent visas for spouses and children require the sponsor to earn a minimum monthly salary and provide an attested marriage or birth certificate.", Partition: router.PartitionVisas},
	{Content: "Tourist visas can be extended twice for 30 days each without leaving the country.", Partition: router.PartitionVisas},
	{Content: "Overstaying a visa incurs a daily fine and may block future entry permits until cleared.", Partition: router.PartitionVisas},

	// Licensing
	{Content: "A mainland trade license is issued by the Department of Economic Development and allows trading anywhere in the country.", Partition: router.PartitionLicensing},
	{Content: "Free zone companies enjoy full foreign ownership and zero customs duty inside the zone, but need a local distributor to trade on the mainland.", Partition: router.PartitionLicensing},
	{Content: "Trade licenses must be renewed annually; late renewal incurs monthly penalties and eventually license cancellation.", Partition: router.PartitionLicensing},
	{Content: "An LLC requires a memorandum of association notarized by a public notary and an office lease registered with the municipality.", Partition: router.PartitionLicensing},
	{Content: "Professional licenses cover service activities and may be owned fully by foreign nationals with a local service agent.", Partition: router.PartitionLicensing},

	// Tax
	{Content: "Corporate tax applies at 9 percent on taxable income above the annual threshold; income below it is taxed at 0 percent.", Partition: router.PartitionTax},
	{Content: "VAT registration is mandatory once taxable supplies exceed the mandatory registration threshold in a rolling 12-month period.", Partition: router.PartitionTax},
	{Content: "VAT returns are filed quarterly through the federal tax portal, with payment due within 28 days of the period end.", Partition: router.PartitionTax},
	{Content: "Qualifying free zone persons can benefit from a 0 percent corporate tax rate on qualifying income, subject to substance requirements.", Partition: router.PartitionTax},
	{Content: "Excise tax applies to tobacco products, energy drinks, and sweetened beverages at rates of 50 or 100 percent.", Partition: router.PartitionTax},

	// Activities
	{Content: "Business activities are classified under the ISIC coding system; every license lists one or more approved activity codes.", Partition: router.PartitionActivities},
	{Content: "E-commerce is a licensed activity distinct from general trading and requires approval of the online sales channel.", Partition: router.PartitionActivities},
	{Content: "Industrial activities require an environmental permit and a physical facility inspection before the license is issued.", Partition: router.PartitionActivities},
	{Content: "Consultancy activities fall under professional licensing and cannot be combined with commercial trading on one license.", Partition: router.PartitionActivities},
	{Content: "Restaurants and cafes need food safety approval from the municipality in addition to the trade license.", Partition: router.PartitionActivities},

	// Pricing
	{Content: "A mainland trade license costs between 10,000 and 15,000 AED per year depending on the activity and office size.", Partition: router.PartitionPricing, Metadata: map[string]string{"item": "trade_license"}},
	{Content: "Free zone license packages start at 12,500 AED per year including one visa quota.", Partition: router.PartitionPricing, Metadata: map[string]string{"item": "freezone_license"}},
	{Content: "A two-year residence visa costs approximately 3,000 AED including medical test and Emirates ID fees.", Partition: router.PartitionPricing, Metadata: map[string]string{"item": "residence_visa"}},
	{Content: "Golden visa processing fees total around 4,800 AED for the ten-year category.", Partition: router.PartitionPricing, Metadata: map[string]string{"item": "golden_visa"}},
	{Content: "VAT registration itself is free of charge; voluntary deregistration is also free.", Partition: router.PartitionPricing, Metadata: map[string]string{"item": "vat_registration"}},

	// General
	{Content: "Official documents issued abroad must be attested by the foreign ministry and the embassy before use in government transactions.", Partition: router.PartitionGeneral},
	{Content: "Bank account opening for new companies typically takes two to four weeks and requires the trade license and shareholder passports.", Partition: router.PartitionGeneral},
	{Content: "The working week runs Monday to Friday for federal entities, with Friday afternoon off.", Partition: router.PartitionGeneral},
	{Content: "Health insurance is mandatory for all residents and must be arranged by the sponsor or employer.", Partition: router.PartitionGeneral},
}

var (
	dbPath         = flag.String("db", "./knowledge_db", "path to BadgerDB database directory")
	seedFileName   = flag.String("src", "", "JSONL file of seed documents")
	host           = flag.String("host", "http://localhost:11434/v1", "embedding service host URL")
	embeddingModel = flag.String("embedding-model", "embeddinggemma", "embedding model name")
	batchSize      = flag.Int("batch", 16, "documents embedded per batch")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// docsFromFile returns an iterator over JSONL seed documents in a file.
func docsFromFile(filename string) (iter.Seq2[seedDoc, error], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(seedDoc, error) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			var doc seedDoc
			if err := json.Unmarshal(line, &doc); err != nil {
				if !yield(seedDoc{}, fmt.Errorf("bad seed line: %w", err)) {
					return
				}
				continue
			}
			if !yield(doc, nil) {
				return
			}
		}
	}, nil
}

// docsFromSlice returns an iterator over the built-in corpus.
func docsFromSlice(docs []seedDoc) iter.Seq2[seedDoc, error] {
	return func(yield func(seedDoc, error) bool) {
		for _, doc := range docs {
			if !yield(doc, nil) {
				return
			}
		}
	}
}

// seedBatched embeds and upserts seed documents in batches, grouped by
// partition within each batch.
func seedBatched(ctx context.Context, store storage.VectorStore, embedder ai.Embedder, source iter.Seq2[seedDoc, error], batchSize int) (int, error) {
	batch := make([]seedDoc, 0, batchSize)
	total := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}

		texts := make([]string, len(batch))
		for i, doc := range batch {
			texts[i] = doc.Content
		}
		embeddings, err := embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding batch: %w", err)
		}
		if len(embeddings) != len(batch) {
			return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(embeddings))
		}

		byPartition := make(map[string][]*core.Document)
		for i, doc := range batch {
			partition := doc.Partition
			if partition == "" {
				partition = router.PartitionGeneral
			}
			byPartition[partition] = append(byPartition[partition], &core.Document{
				Content:  doc.Content,
				Metadata: doc.Metadata,
				Vector:   reindex.NormalizeVector(embeddings[i]),
			})
		}
		for partition, docs := range byPartition {
			if _, err := store.UpsertDocuments(ctx, partition, docs...); err != nil {
				return fmt.Errorf("upserting into %s: %w", partition, err)
			}
		}

		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for doc, err := range source {
		if err != nil {
			slog.Warn("skipping seed document", "err", err)
			continue
		}
		if doc.Content == "" {
			continue
		}
		batch = append(batch, doc)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := flush(); err != nil {
		return total, err
	}

	return total, nil
}

func main() {
	aiConfig := ai.NewConfig(
		ai.WithHost(*host),
		ai.WithEmbeddingModel(*embeddingModel),
		ai.WithRerankerEnabled(false),
	)

	svc, err := retrieval.NewService(*dbPath, retrieval.WithAIConfig(aiConfig))
	if err != nil {
		panic(err)
	}
	defer svc.Close()

	ctx := context.Background()

	var source iter.Seq2[seedDoc, error]
	if *seedFileName != "" {
		source, err = docsFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = docsFromSlice(corpus)
	}

	total, err := seedBatched(ctx, svc.VectorStore(), svc.Provider().Embedder(), source, *batchSize)
	if err != nil {
		panic(err)
	}
	slog.Info("seeding complete", "documents", total)
}
