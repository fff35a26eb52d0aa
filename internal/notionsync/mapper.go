package notionsync

import (
	"strings"
	"time"

	"github.com/dvloznov/hcstc-decisioning/internal/bigquery"
	"github.com/jomei/notionapi"
)

// Property names of the review database.
const (
	PropApplicationID   = "Application ID"
	PropDecisionID      = "Decision ID"
	PropScore           = "Score"
	PropRiskLevel       = "Risk Level"
	PropReasons         = "Referral Reasons"
	PropRiskFlags       = "Risk Flags"
	PropMonthlyIncome   = "Monthly Income"
	PropDisposable      = "Monthly Disposable"
	PropDecisionDate    = "Decision Date"
	PropReviewStatus    = "Review Status"
	PropNarrative       = "Underwriter Summary"
	defaultReviewStatus = "To review"
)

// Notion caps a rich text item at 2000 characters and option names at 100.
const (
	maxRichText   = 2000
	maxOptionName = 100
)

func richText(content string) []notionapi.RichText {
	if len(content) > maxRichText {
		content = content[:maxRichText-3] + "..."
	}
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{
				Content: content,
			},
		},
	}
}

// optionName makes s usable as a select option: no commas, bounded length.
func optionName(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", " "))
	if len(s) > maxOptionName {
		s = s[:maxOptionName]
	}
	return s
}

// DecisionToNotionProperties converts a referred decision into review page
// properties. Review Status is only set on creation so reviewers keep
// their progress when a page is refreshed.
func DecisionToNotionProperties(row *bigquery.DecisionRow, creating bool) notionapi.Properties {
	props := notionapi.Properties{
		PropApplicationID: notionapi.TitleProperty{
			Title: richText(row.ApplicationID),
		},
		PropDecisionID: notionapi.RichTextProperty{
			RichText: richText(row.DecisionID),
		},
		PropScore: notionapi.NumberProperty{
			Number: row.Score,
		},
		PropReasons: notionapi.RichTextProperty{
			RichText: richText(strings.Join(row.ReferralReasons, "; ")),
		},
		PropDecisionDate: notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: func() *notionapi.Date {
					d := notionapi.Date(row.DecisionDate.In(time.UTC))
					return &d
				}(),
			},
		},
	}

	if row.RiskLevel != "" {
		props[PropRiskLevel] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: optionName(row.RiskLevel),
			},
		}
	}

	flags := make([]notionapi.Option, 0, len(row.RiskFlags))
	for _, f := range row.RiskFlags {
		if name := optionName(f); name != "" {
			flags = append(flags, notionapi.Option{Name: name})
		}
	}
	props[PropRiskFlags] = notionapi.MultiSelectProperty{
		MultiSelect: flags,
	}

	if row.MonthlyIncome != nil {
		f, _ := row.MonthlyIncome.Float64()
		props[PropMonthlyIncome] = notionapi.NumberProperty{Number: f}
	}
	if row.MonthlyDisposable != nil {
		f, _ := row.MonthlyDisposable.Float64()
		props[PropDisposable] = notionapi.NumberProperty{Number: f}
	}

	if row.NarrativeSummary.Valid {
		props[PropNarrative] = notionapi.RichTextProperty{
			RichText: richText(row.NarrativeSummary.StringVal),
		}
	}

	if creating {
		props[PropReviewStatus] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: defaultReviewStatus,
			},
		}
	}

	return props
}

// extractApplicationID reads the title property of a review page.
func extractApplicationID(page notionapi.Page) string {
	if prop, ok := page.Properties[PropApplicationID]; ok {
		if title, ok := prop.(*notionapi.TitleProperty); ok {
			if len(title.Title) > 0 {
				return title.Title[0].PlainText
			}
		}
	}
	return ""
}

// extractDecisionID reads the decision a review page was last built from.
func extractDecisionID(page notionapi.Page) string {
	if prop, ok := page.Properties[PropDecisionID]; ok {
		if richText, ok := prop.(*notionapi.RichTextProperty); ok {
			if len(richText.RichText) > 0 {
				return richText.RichText[0].PlainText
			}
		}
	}
	return ""
}
