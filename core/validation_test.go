package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateDocument(t *testing.T) {
	validTime := time.Now().Add(-1 * time.Hour)
	futureTime := time.Now().Add(1 * time.Hour)

	tests := []struct {
		name    string
		doc     *Document
		wantErr error
	}{
		{
			name: "valid document",
			doc: &Document{
				Id:        1,
				Content:   "Residence visa requirements",
				UpdatedAt: validTime,
			},
			wantErr: nil,
		},
		{
			name: "valid document with empty vector",
			doc: &Document{
				Id:        1,
				Content:   "Not yet embedded",
				UpdatedAt: validTime,
				Vector:    nil,
			},
			wantErr: nil,
		},
		{
			name: "valid document with ID 0",
			doc: &Document{
				Id:        0,
				Content:   "ID derived on store",
				UpdatedAt: validTime,
			},
			wantErr: nil,
		},
		{
			name: "valid document with zero timestamp",
			doc: &Document{
				Id:      1,
				Content: "Timestamps filled in on store",
			},
			wantErr: nil,
		},
		{
			name:    "nil document",
			doc:     nil,
			wantErr: ErrInvalidDocument,
		},
		{
			name: "empty content",
			doc: &Document{
				Id:        1,
				Content:   "",
				UpdatedAt: validTime,
			},
			wantErr: ErrEmptyContent,
		},
		{
			name: "future timestamp",
			doc: &Document{
				Id:        1,
				Content:   "Hello",
				UpdatedAt: futureTime,
			},
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.doc)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDocument() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateDocument() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDocument() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRouteDecision(t *testing.T) {
	tests := []struct {
		name     string
		decision *RouteDecision
		wantErr  error
	}{
		{
			name: "valid decision",
			decision: &RouteDecision{
				Partition:  "visa_knowledge",
				Confidence: 0.8,
			},
			wantErr: nil,
		},
		{
			name: "valid decision with fallbacks",
			decision: &RouteDecision{
				Partition:  "visa_knowledge",
				Confidence: 0.3,
				Fallbacks:  []string{"licensing_knowledge", "general_knowledge"},
			},
			wantErr: nil,
		},
		{
			name: "boundary confidence values",
			decision: &RouteDecision{
				Partition:  "visa_knowledge",
				Confidence: 0,
			},
			wantErr: nil,
		},
		{
			name:     "nil decision",
			decision: nil,
			wantErr:  ErrInvalidRouteDecision,
		},
		{
			name: "empty partition",
			decision: &RouteDecision{
				Partition:  "",
				Confidence: 0.5,
			},
			wantErr: ErrEmptyPartition,
		},
		{
			name: "confidence above one",
			decision: &RouteDecision{
				Partition:  "visa_knowledge",
				Confidence: 1.5,
			},
			wantErr: ErrConfidenceOutOfRange,
		},
		{
			name: "negative confidence",
			decision: &RouteDecision{
				Partition:  "visa_knowledge",
				Confidence: -0.1,
			},
			wantErr: ErrConfidenceOutOfRange,
		},
		{
			name: "primary repeated in fallbacks",
			decision: &RouteDecision{
				Partition:  "visa_knowledge",
				Confidence: 0.3,
				Fallbacks:  []string{"general_knowledge", "visa_knowledge"},
			},
			wantErr: ErrPrimaryInFallbacks,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRouteDecision(tt.decision)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateRouteDecision() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateRouteDecision() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateRouteDecision() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsValidTimestamp(t *testing.T) {
	tests := []struct {
		name string
		ts   time.Time
		want bool
	}{
		{
			name: "past timestamp",
			ts:   time.Now().Add(-1 * time.Hour),
			want: true,
		},
		{
			name: "current time (approximately)",
			ts:   time.Now(),
			want: true,
		},
		{
			name: "future timestamp",
			ts:   time.Now().Add(1 * time.Hour),
			want: false,
		},
		{
			name: "zero time",
			ts:   time.Time{},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidTimestamp(tt.ts)
			if got != tt.want {
				t.Errorf("IsValidTimestamp() = %v, want %v", got, tt.want)
			}
		})
	}
}
