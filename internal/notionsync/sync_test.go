package notionsync

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	bq "github.com/dvloznov/hcstc-decisioning/internal/bigquery"
	"github.com/jomei/notionapi"
)

type MockNotionService struct {
	CreatePageFunc    func(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)
	UpdatePageFunc    func(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error)
	QueryDatabaseFunc func(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
}

func (m *MockNotionService) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	if m.CreatePageFunc != nil {
		return m.CreatePageFunc(ctx, databaseID, properties)
	}
	return &notionapi.Page{ID: "new-page"}, nil
}

func (m *MockNotionService) UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error) {
	if m.UpdatePageFunc != nil {
		return m.UpdatePageFunc(ctx, pageID, properties)
	}
	return &notionapi.Page{ID: notionapi.ObjectID(pageID)}, nil
}

func (m *MockNotionService) QueryDatabase(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	if m.QueryDatabaseFunc != nil {
		return m.QueryDatabaseFunc(ctx, databaseID, filter)
	}
	return &notionapi.DatabaseQueryResponse{}, nil
}

type MockDecisionSource struct {
	ListDecisionsFunc func(ctx context.Context, filter bq.DecisionFilter) ([]*bq.DecisionRow, error)
}

func (m *MockDecisionSource) ListDecisions(ctx context.Context, filter bq.DecisionFilter) ([]*bq.DecisionRow, error) {
	return m.ListDecisionsFunc(ctx, filter)
}

func referral(decisionID, appID string) *bq.DecisionRow {
	return &bq.DecisionRow{
		DecisionID:      decisionID,
		ApplicationID:   appID,
		Decision:        "REFER",
		Score:           55,
		RiskLevel:       "Medium",
		ReferralReasons: []string{"Score in referral band", "Gambling 18% of income"},
		RiskFlags:       []string{"Gambling activity", "Overdraft, frequent"},
		MonthlyIncome:   big.NewRat(210000, 100),
		DecisionDate:    civil.Date{Year: 2025, Month: 4, Day: 30},
	}
}

func reviewPage(pageID, appID, decisionID string) notionapi.Page {
	return notionapi.Page{
		ID: notionapi.ObjectID(pageID),
		Properties: notionapi.Properties{
			PropApplicationID: &notionapi.TitleProperty{Title: []notionapi.RichText{{PlainText: appID}}},
			PropDecisionID:    &notionapi.RichTextProperty{RichText: []notionapi.RichText{{PlainText: decisionID}}},
		},
	}
}

func pagesResponse(pages ...notionapi.Page) func(context.Context, string, *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return func(context.Context, string, *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
		return &notionapi.DatabaseQueryResponse{Results: pages}, nil
	}
}

func TestSyncReferrals(t *testing.T) {
	from := civil.Date{Year: 2025, Month: 4, Day: 1}
	to := civil.Date{Year: 2025, Month: 4, Day: 30}

	var gotFilter bq.DecisionFilter
	source := &MockDecisionSource{
		ListDecisionsFunc: func(ctx context.Context, filter bq.DecisionFilter) ([]*bq.DecisionRow, error) {
			gotFilter = filter
			return []*bq.DecisionRow{
				referral("d5", "app-1"),
				referral("d4", "app-2"),
				referral("d3", "app-3"),
				referral("d1", "app-1"),
			}, nil
		},
	}

	var created []string
	var updated []string
	notion := &MockNotionService{
		QueryDatabaseFunc: pagesResponse(
			reviewPage("page-2", "app-2", "d4"),
			reviewPage("page-3", "app-3", "d0"),
		),
		CreatePageFunc: func(ctx context.Context, databaseID string, props notionapi.Properties) (*notionapi.Page, error) {
			title := props[PropApplicationID].(notionapi.TitleProperty)
			created = append(created, title.Title[0].Text.Content)
			if _, ok := props[PropReviewStatus]; !ok {
				t.Error("new pages should carry a review status")
			}
			return &notionapi.Page{ID: "p-new"}, nil
		},
		UpdatePageFunc: func(ctx context.Context, pageID string, props notionapi.Properties) (*notionapi.Page, error) {
			updated = append(updated, pageID)
			if _, ok := props[PropReviewStatus]; ok {
				t.Error("refreshing a page must not reset its review status")
			}
			return &notionapi.Page{ID: notionapi.ObjectID(pageID)}, nil
		},
	}

	result, err := SyncReferrals(context.Background(), source, notion, "db-1", from, to, false)
	if err != nil {
		t.Fatalf("SyncReferrals() error = %v", err)
	}

	if gotFilter.Decision != "REFER" || gotFilter.From != from || gotFilter.To != to {
		t.Errorf("filter = %+v", gotFilter)
	}
	want := SyncResult{Referrals: 3, Created: 1, Updated: 1, Skipped: 1}
	if result != want {
		t.Errorf("result = %+v, want %+v", result, want)
	}
	if len(created) != 1 || created[0] != "app-1" {
		t.Errorf("created = %v, want [app-1]", created)
	}
	if len(updated) != 1 || updated[0] != "page-3" {
		t.Errorf("updated = %v, want [page-3]", updated)
	}
}

func TestSyncReferralsDryRun(t *testing.T) {
	source := &MockDecisionSource{
		ListDecisionsFunc: func(ctx context.Context, filter bq.DecisionFilter) ([]*bq.DecisionRow, error) {
			return []*bq.DecisionRow{referral("d1", "app-1"), referral("d2", "app-2")}, nil
		},
	}
	notion := &MockNotionService{
		QueryDatabaseFunc: pagesResponse(reviewPage("page-2", "app-2", "d0")),
		CreatePageFunc: func(context.Context, string, notionapi.Properties) (*notionapi.Page, error) {
			t.Fatal("dry run must not create pages")
			return nil, nil
		},
		UpdatePageFunc: func(context.Context, string, notionapi.Properties) (*notionapi.Page, error) {
			t.Fatal("dry run must not update pages")
			return nil, nil
		},
	}

	result, err := SyncReferrals(context.Background(), source, notion, "db-1", civil.Date{}, civil.Date{}, true)
	if err != nil {
		t.Fatalf("SyncReferrals() error = %v", err)
	}
	if result.Created != 1 || result.Updated != 1 {
		t.Errorf("result = %+v, want one create and one update", result)
	}
}

func TestSyncReferralsErrors(t *testing.T) {
	okSource := &MockDecisionSource{
		ListDecisionsFunc: func(ctx context.Context, filter bq.DecisionFilter) ([]*bq.DecisionRow, error) {
			return []*bq.DecisionRow{referral("d1", "app-1")}, nil
		},
	}

	t.Run("list failure", func(t *testing.T) {
		source := &MockDecisionSource{
			ListDecisionsFunc: func(ctx context.Context, filter bq.DecisionFilter) ([]*bq.DecisionRow, error) {
				return nil, errors.New("bigquery unavailable")
			},
		}
		if _, err := SyncReferrals(context.Background(), source, &MockNotionService{}, "db", civil.Date{}, civil.Date{}, false); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("query failure", func(t *testing.T) {
		notion := &MockNotionService{
			QueryDatabaseFunc: func(context.Context, string, *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
				return nil, errors.New("rate limited")
			},
		}
		if _, err := SyncReferrals(context.Background(), okSource, notion, "db", civil.Date{}, civil.Date{}, false); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("create failure is counted", func(t *testing.T) {
		notion := &MockNotionService{
			CreatePageFunc: func(context.Context, string, notionapi.Properties) (*notionapi.Page, error) {
				return nil, errors.New("validation_error")
			},
		}
		result, err := SyncReferrals(context.Background(), okSource, notion, "db", civil.Date{}, civil.Date{}, false)
		if err != nil {
			t.Fatalf("SyncReferrals() error = %v", err)
		}
		if result.Failed != 1 || result.Created != 0 {
			t.Errorf("result = %+v, want one failure", result)
		}
	})
}

func TestQueryAllNotionPagesFollowsCursor(t *testing.T) {
	var cursors []notionapi.Cursor
	notion := &MockNotionService{
		QueryDatabaseFunc: func(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
			cursors = append(cursors, req.StartCursor)
			if req.StartCursor == "" {
				return &notionapi.DatabaseQueryResponse{Results: []notionapi.Page{reviewPage("p1", "a1", "d1")}, HasMore: true, NextCursor: "c2"}, nil
			}
			return &notionapi.DatabaseQueryResponse{Results: []notionapi.Page{reviewPage("p2", "a2", "d2")}}, nil
		},
	}

	pages, err := queryAllNotionPages(context.Background(), notion, "db")
	if err != nil {
		t.Fatalf("queryAllNotionPages() error = %v", err)
	}
	if len(pages) != 2 || len(cursors) != 2 || cursors[1] != "c2" {
		t.Errorf("pages = %d, cursors = %v", len(pages), cursors)
	}
}

func TestDecisionToNotionProperties(t *testing.T) {
	row := referral("d1", "app-1")
	row.NarrativeSummary = bigquery.NullString{StringVal: "Irregular gig income.", Valid: true}
	row.ReferralReasons = []string{strings.Repeat("x", 2500)}

	props := DecisionToNotionProperties(row, true)

	score := props[PropScore].(notionapi.NumberProperty)
	if score.Number != 55 {
		t.Errorf("Score = %v, want 55", score.Number)
	}
	income := props[PropMonthlyIncome].(notionapi.NumberProperty)
	if income.Number != 2100 {
		t.Errorf("Monthly Income = %v, want 2100", income.Number)
	}
	flags := props[PropRiskFlags].(notionapi.MultiSelectProperty)
	if len(flags.MultiSelect) != 2 || strings.Contains(flags.MultiSelect[1].Name, ",") {
		t.Errorf("Risk Flags = %+v, want two comma-free options", flags.MultiSelect)
	}
	reasons := props[PropReasons].(notionapi.RichTextProperty)
	if n := len(reasons.RichText[0].Text.Content); n != 2000 {
		t.Errorf("reason text length = %d, want truncation to 2000", n)
	}
	if _, ok := props[PropNarrative]; !ok {
		t.Error("expected the underwriter summary property")
	}
	date := props[PropDecisionDate].(notionapi.DateProperty)
	if got := time.Time(*date.Date.Start).Format("2006-01-02"); got != "2025-04-30" {
		t.Errorf("Decision Date = %s", got)
	}

	if _, ok := DecisionToNotionProperties(row, false)[PropReviewStatus]; ok {
		t.Error("refresh properties must not include the review status")
	}
}
