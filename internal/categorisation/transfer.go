package categorisation

import (
	"math"
	"regexp"
	"strings"

	"github.com/dvloznov/hcstc-decisioning/internal/patterns"
)

// Transfer signal weights. A debit scoring transferThreshold or more is a
// transfer on signals alone; scores from transferFallback up fall back to
// the keyword-only check.
const (
	pointsExternalTransfer = 30
	pointsNamedRecipient   = 20
	pointsFintechOrigin    = 15
	pointsAccountReference = 15
	pointsTransferApp      = 10
	pointsTransferKeyword  = 15

	transferThreshold = 70
	transferFallback  = 30
)

var (
	namedRecipient  = regexp.MustCompile(`(?i)\bto\s+(mr|mrs|ms|miss|dr|mx)\.?\s+[a-z]+`)
	fintechOrigin   = regexp.MustCompile(`(?i)\bsent\s+from\s+(revolut|monzo|wise|starling|chase|kroo|curve|paypal|transferwise)\b`)
	sortCode        = regexp.MustCompile(`\b\d{2}-\d{2}-\d{2}\b`)
	accountNumber   = regexp.MustCompile(`\b\d{8}\b`)
	sortCodeAccount = regexp.MustCompile(`(?i)sort\s*code|sortcodeaccountnumber|\bacc(oun)?t\s*(no|number)\b`)
	standingOrder   = regexp.MustCompile(`(?i)\bstanding\s*order\b`)
)

var transferApps = []string{
	"REVOLUT", "MONZO", "WISE", "TRANSFERWISE", "STARLING", "CURVE", "KROO",
	"REMITLY", "WORLDREMIT", "WESTERN UNION", "MONEYGRAM", "SKRILL",
}

var transferWords = []string{
	"TRANSFER", "TFR", "XFER", "SENT TO", "SENT FROM", "MOVED TO", "MOVED FROM",
	"OWN ACCOUNT", "BETWEEN ACCOUNTS", "SELF TRANSFER",
}

// Signal names recorded in CategoryMatch.Detail.
const (
	SignalExternalTransfer = "external_transfer_category"
	SignalNamedRecipient   = "named_recipient"
	SignalFintechOrigin    = "fintech_origin"
	SignalAccountReference = "account_reference"
	SignalTransferApp      = "transfer_app"
	SignalTransferKeyword  = "transfer_keyword"
)

// TransferScore sums the independent transfer signals of a debit.
func TransferScore(in *Input) (int, []string) {
	score := 0
	var signals []string
	add := func(points int, name string) {
		score += points
		signals = append(signals, name)
	}

	if in.Primary == "TRANSFER_OUT" || strings.Contains(in.Detailed, "TRANSFER") {
		add(pointsExternalTransfer, SignalExternalTransfer)
	}
	if namedRecipient.MatchString(in.Text) {
		add(pointsNamedRecipient, SignalNamedRecipient)
	}
	if fintechOrigin.MatchString(in.Text) {
		add(pointsFintechOrigin, SignalFintechOrigin)
	}
	if sortCodeAccount.MatchString(in.Text) || sortCode.MatchString(in.Text) || accountNumber.MatchString(in.Text) {
		add(pointsAccountReference, SignalAccountReference)
	}
	if in.Merchant != "" && patterns.ContainsAnyWord(in.Merchant, transferApps) {
		add(pointsTransferApp, SignalTransferApp)
	}
	if patterns.ContainsAnyWord(in.Text, transferWords) {
		add(pointsTransferKeyword, SignalTransferKeyword)
	}
	return score, signals
}

func transferConfidence(score int) float64 {
	return math.Min(0.98, float64(score)/100)
}
