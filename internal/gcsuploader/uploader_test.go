package gcsuploader

import (
	"testing"
	"time"
)

func TestParseGCSURI(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{"nested object", "gs://apps/2025/03/app-1.json", "apps", "2025/03/app-1.json", false},
		{"top-level object", "gs://apps/app-1.json", "apps", "app-1.json", false},
		{"wrong scheme", "s3://apps/app-1.json", "", "", true},
		{"bucket only", "gs://apps", "", "", true},
		{"trailing slash", "gs://apps/", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, object, err := ParseGCSURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseGCSURI() error = %v, wantErr %v", err, tt.wantErr)
			}
			if bucket != tt.wantBucket || object != tt.wantObject {
				t.Errorf("ParseGCSURI() = %q, %q, want %q, %q", bucket, object, tt.wantBucket, tt.wantObject)
			}
		})
	}
}

func TestExtractFilenameFromGCSURI(t *testing.T) {
	if got := ExtractFilenameFromGCSURI("gs://apps/2025/app-7.json"); got != "app-7.json" {
		t.Errorf("ExtractFilenameFromGCSURI() = %q, want app-7.json", got)
	}
	if got := ExtractFilenameFromGCSURI("gs://apps"); got != "apps" {
		t.Errorf("ExtractFilenameFromGCSURI() = %q, want apps", got)
	}
}

func TestReportObjectName(t *testing.T) {
	day := time.Date(2025, 3, 31, 15, 4, 0, 0, time.UTC)
	got := ReportObjectName("reports", "app-1", day, "balance.png")
	if want := "reports/2025-03-31/app-1/balance.png"; got != want {
		t.Errorf("ReportObjectName() = %q, want %q", got, want)
	}
}
