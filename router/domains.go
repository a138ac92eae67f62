package router

// Partition names for the default knowledge domains.
const (
	PartitionVisas      = "visa_knowledge"
	PartitionLicensing  = "licensing_knowledge"
	PartitionTax        = "tax_knowledge"
	PartitionActivities = "activity_knowledge"
	PartitionPricing    = "pricing_knowledge"
	PartitionGeneral    = "general_knowledge"
)

// Domain maps a partition to the keywords that vote for it.
// Keywords containing a space are matched as phrases against the
// normalized query; single words are matched against the token set.
type Domain struct {
	Partition string
	Keywords  []string
}

// DefaultDomains returns the built-in domain table. Registration order is
// the tie-break priority: when two domains score equally, the earlier one
// wins.
func DefaultDomains() []Domain {
	return []Domain{
		{
			Partition: PartitionVisas,
			Keywords: []string{
				"visa", "visas", "visit", "tourist", "residence", "residency",
				"permit", "entry", "passport", "sponsor", "sponsorship",
				"golden visa", "work permit", "dependent", "immigration",
			},
		},
		{
			Partition: PartitionLicensing,
			Keywords: []string{
				"license", "licence", "licensing", "trade license",
				"incorporation", "incorporate", "register", "registration",
				"company", "llc", "establishment", "free zone", "mainland",
				"renewal", "shareholder",
			},
		},
		{
			Partition: PartitionTax,
			Keywords: []string{
				"tax", "taxes", "taxation", "vat", "corporate tax", "excise",
				"filing", "return", "deadline", "exemption", "audit",
				"withholding",
			},
		},
		{
			Partition: PartitionActivities,
			Keywords: []string{
				"activity", "activities", "classification", "isic",
				"permitted", "category", "categories", "sector", "industry",
				"business activity",
			},
		},
		{
			Partition: PartitionPricing,
			Keywords: []string{
				"price", "prices", "pricing", "cost", "costs", "fee", "fees",
				"charge", "charges", "how much", "payment", "quote",
			},
		},
	}
}

// DefaultAdjacency returns the static fallback table used for
// low-confidence routes: for each primary partition, the neighboring
// partitions most likely to hold the answer, in order.
func DefaultAdjacency() map[string][]string {
	return map[string][]string{
		PartitionVisas:      {PartitionLicensing, PartitionGeneral},
		PartitionLicensing:  {PartitionActivities, PartitionPricing, PartitionGeneral},
		PartitionTax:        {PartitionLicensing, PartitionActivities, PartitionGeneral},
		PartitionActivities: {PartitionLicensing, PartitionGeneral},
		PartitionPricing:    {PartitionLicensing, PartitionVisas, PartitionGeneral},
		PartitionGeneral:    {PartitionVisas, PartitionLicensing, PartitionTax},
	}
}
