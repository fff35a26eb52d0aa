package patterns

// Income tables, checked against credits in this order.
var Income = Group{
	{
		Name: "salary",
		Keywords: []string{
			"SALARY", "WAGES", "PAYROLL", "NET PAY", "WAGE", "PAYSLIP",
			"EMPLOYER", "EMPLOYERS",
		},
		Regexes: mustCompile(
			`salary|wages|payroll|net\s*pay`,
			`\b(employer|company)\s*(payment|pay)\b`,
			`monthly\s*pay`,
			`\b(ltd|plc|limited)\s*(credit|payment)`,
		),
		Weight:   1.0,
		IsStable: true,
	},
	{
		Name: "benefits",
		Keywords: []string{
			"UNIVERSAL CREDIT", "UC", "DWP", "HMRC", "CHILD BENEFIT",
			"PIP", "DLA", "ESA", "JSA", "PENSION CREDIT", "HOUSING BENEFIT",
			"TAX CREDIT", "WORKING TAX", "CHILD TAX", "CARERS ALLOWANCE",
			"ATTENDANCE ALLOWANCE", "BEREAVEMENT", "MATERNITY ALLOWANCE",
		},
		Regexes: mustCompile(
			`universal\s*credit`,
			`child\s*benefit`,
			`pension\s*credit`,
			`housing\s*benefit`,
			`tax\s*credit`,
			`carers?\s*allowance`,
		),
		Weight:   1.0,
		IsStable: true,
	},
	{
		Name: "pension",
		Keywords: []string{
			"PENSION", "ANNUITY", "STATE PENSION", "NEST", "AVIVA",
			"LEGAL AND GENERAL", "SCOTTISH WIDOWS", "STANDARD LIFE",
			"PRUDENTIAL", "ROYAL LONDON", "AEGON", "RETIREMENT",
		},
		Regexes: mustCompile(
			`\bpension\b`,
			`annuity`,
			`state\s*pension`,
			`retirement\s*(income|payment)`,
		),
		Weight:   1.0,
		IsStable: true,
	},
	{
		Name: "gig_economy",
		Keywords: []string{
			"UBER", "DELIVEROO", "JUST EAT", "BOLT", "LYFT",
			"FIVERR", "UPWORK", "EBAY", "VINTED", "DEPOP",
			"TASKRABBIT", "FREELANCER", "ETSY", "AMAZON FLEX",
		},
		Regexes: mustCompile(
			`\buber\b`,
			`deliveroo`,
			`just\s*eat`,
			`fiverr`,
			`upwork`,
			`vinted`,
			`depop`,
		),
		Weight: 0.7,
	},
	{
		Name: "loans",
		Keywords: []string{
			"LOAN PAYMENT", "LOAN REPAYMENT", "LOAN DISBURSEMENT",
			"PERSONAL LOAN", "UNSECURED LOAN", "GUARANTOR LOAN",
			"LENDABLE", "ZOPA", "TOTALSA", "AQUA",
			"VISA DIRECT PAYMENT", "LOAN REVERSAL", "LOAN REFUND",
		},
		Regexes: mustCompile(
			`loan\s*(payment|repayment|disbursement)`,
			`personal\s*loan`,
			`unsecured\s*loan`,
			`guarantor\s*loan`,
			`mr\s*lender`,
			`visa\s*direct\s*payment`,
			`(loan|loans)\s*(reversal|refund)`,
			`reversal\s*of.*\bloan`,
		),
		Weight: 0,
	},
	{
		Name:     "refund",
		Keywords: []string{"REFUND", "REFUNDED", "REIMBURSEMENT", "CASHBACK", "CREDIT ADJUSTMENT"},
		Regexes: mustCompile(
			`\brefund(ed)?\b`,
			`reimbursement`,
			`cash\s*back`,
		),
		Weight: 0.5,
	},
}

// Debt tables. HCSTC comes first so that a payday lender is never absorbed
// by the generic loan table.
var Debt = Group{
	{
		Name: "hcstc_payday",
		Keywords: []string{
			"LENDING STREAM", "LENDINGSTREAM", "DRAFTY", "MR LENDER", "MRLENDER",
			"MONEYBOAT", "CREDITSPRING", "CASHFLOAT", "QUIDMARKET", "QUID MARKET",
			"LOANS 2 GO", "LOANS2GO", "CASHASAP", "POLAR CREDIT", "118 118 MONEY",
			"118118 MONEY", "THE MONEY PLATFORM", "FAST LOAN UK", "CONDUIT",
			"SALAD MONEY", "FAIR FINANCE", "SAVVY LOAN PRODUCTS", "LIKELY LOANS",
		},
		Regexes: mustCompile(
			`lending\s*stream`,
			`mr\s*lender`,
			`quid\s*market`,
			`loans\s*2\s*go`,
			`polar\s*credit`,
			`118\s*118\s*money`,
			`the\s*money\s*platform`,
			`fast\s*loan\s*uk`,
			`salad\s*money`,
			`fair\s*finance`,
		),
		RiskLevel: "very_high",
	},
	{
		Name: "other_loans",
		Keywords: []string{
			"LOAN", "FINANCE", "HP", "CAR FINANCE", "ZOPA", "NOVUNA",
			"FINIO LOANS", "EVLO", "EVERYDAY LOANS", "BAMBOO", "LIVELEND",
			"PERSONAL LOAN", "AUTO FINANCE", "VEHICLE FINANCE", "LENDABLE",
			"OAKBROOK", "FERNOVO",
		},
		Regexes: mustCompile(
			`\bloans?\s*(repayment|payment)?\b`,
			`\bfinance\s*(payment|agreement)\b`,
			`\bhp\s*(payment|repayment)\b`,
			`finio\s*loans?`,
			`everyday\s*loans?`,
		),
		RiskLevel: "medium",
	},
	{
		Name: "credit_cards",
		Keywords: []string{
			"VANQUIS", "AQUA", "CAPITAL ONE", "MARBLES", "ZABLE",
			"TYMIT", "118 118 MONEY CARD", "FLUID CARD", "CHROME CARD",
			"BARCLAYCARD", "AMEX", "AMERICAN EXPRESS", "MBNA", "NEWDAY",
			"CREDIT CARD",
		},
		Regexes: mustCompile(
			`capital\s*one`,
			`fluid\s*(card|credit|payment)`,
			`chrome\s*(card|credit|payment)`,
			`american\s*express`,
			`credit\s*card\s*(payment|minimum|balance)`,
		),
		RiskLevel: "low",
	},
	{
		Name: "bnpl",
		Keywords: []string{
			"KLARNA", "CLEARPAY", "ZILCH", "MONZO FLEX", "LAYBUY",
			"PAYPAL PAY IN 3", "RIVERTY", "PAYL8R",
		},
		Regexes: mustCompile(
			`monzo\s*flex`,
			`paypal\s*pay\s*in\s*3`,
		),
		RiskLevel: "medium",
	},
	{
		Name: "catalogue",
		Keywords: []string{
			"LITTLEWOODS", "JD WILLIAMS", "FREEMANS", "GRATTAN", "SIMPLY BE",
			"JACAMO", "AMBROSE WILSON", "FASHION WORLD", "CATALOGUE PAYMENT",
			"CATALOG PAYMENT",
		},
		Regexes: mustCompile(
			`\bvery\s*(catalogue|account|payment)\b`,
			`\bstudio\s*(catalogue|account|payment)\b`,
			`jd\s*williams`,
			`(marks\s*(&|and)?\s*spencer|m&s)\s*(catalogue|catalog)`,
			`catalog(ue)?\s*(payment|account|credit)`,
		),
		RiskLevel: "medium",
	},
}

// Essential living costs.
var Essential = Group{
	{
		Name: "rent",
		Keywords: []string{
			"RENT", "LANDLORD", "LETTING", "TENANCY", "HOUSING ASSOCIATION",
			"COUNCIL RENT", "HA RENT", "PROPERTY RENT",
		},
		Regexes: mustCompile(
			`\brent\b`,
			`landlord`,
			`letting\s*(agent|agency)`,
			`tenancy`,
			`housing\s*association`,
		),
		IsHousing: true,
	},
	{
		Name:     "mortgage",
		Keywords: []string{"MORTGAGE", "HOME LOAN", "BUILDING SOCIETY"},
		Regexes: mustCompile(
			`mortgage`,
			`home\s*loan`,
		),
		IsHousing: true,
	},
	{
		Name: "council_tax",
		Keywords: []string{
			"COUNCIL TAX", "LOCAL AUTHORITY", "BOROUGH COUNCIL",
			"CITY COUNCIL", "DISTRICT COUNCIL", "COUNTY COUNCIL",
		},
		Regexes: mustCompile(
			`council\s*tax`,
			`(borough|city|district|county)\s*council`,
			`local\s*authority`,
		),
	},
	{
		Name: "utilities",
		Keywords: []string{
			"BRITISH GAS", "EDF", "EON", "E.ON", "SSE", "OCTOPUS ENERGY", "OCTOPUS",
			"SCOTTISH POWER", "THAMES WATER", "SEVERN TRENT", "ANGLIAN WATER",
			"UNITED UTILITIES", "SOUTHERN WATER", "YORKSHIRE WATER",
			"ELECTRICITY", "GAS", "WATER", "ENERGY",
		},
		Regexes: mustCompile(
			`british\s*gas`,
			`scottish\s*power`,
			`thames\s*water`,
			`severn\s*trent`,
			`\b(electricity|gas|water)\s*(bill|payment)\b`,
		),
	},
	{
		Name: "communications",
		Keywords: []string{
			"BT", "SKY", "VIRGIN MEDIA", "VODAFONE", "EE", "O2", "THREE",
			"TV LICENCE", "PLUSNET", "TALKTALK",
		},
		Regexes: mustCompile(
			`\bbt\s*(broadband|phone|bill)\b`,
			`virgin\s*media`,
			`tv\s*lic(e|en)(s|c)e`,
			`mobile\s*(phone|contract|bill)`,
		),
	},
	{
		Name: "insurance",
		Keywords: []string{
			"INSURANCE", "DIRECT LINE", "ADMIRAL", "RAC", "CHURCHILL",
			"HASTINGS", "MORE THAN", "SWINTON", "ESURE",
		},
		Regexes: mustCompile(
			`insurance\s*(premium|payment)?`,
			`direct\s*line`,
			`\baa\s*(insurance|breakdown)\b`,
		),
	},
	{
		Name: "transport",
		Keywords: []string{
			"SHELL", "BP", "ESSO", "TEXACO", "FUEL", "PETROL", "DIESEL",
			"TFL", "OYSTER", "NATIONAL RAIL", "TRAINLINE", "RAILCARD",
			"BUS PASS", "PARKING", "CONGESTION",
		},
		Regexes: mustCompile(
			`national\s*rail`,
			`congestion\s*charge`,
		),
	},
	{
		Name: "groceries",
		Keywords: []string{
			"TESCO", "SAINSBURY", "SAINSBURYS", "ASDA", "MORRISONS", "ALDI", "LIDL",
			"WAITROSE", "M&S FOOD", "MARKS SPENCER", "CO-OP", "COOP",
			"ICELAND", "FARMFOODS", "OCADO", "AMAZON FRESH",
		},
		Regexes: mustCompile(
			`sainsbury`,
			`marks\s*(and|&)?\s*spencer`,
			`\bco-?op\b`,
		),
	},
	{
		Name: "childcare",
		Keywords: []string{
			"NURSERY", "CHILDCARE", "CHILDMINDER", "CRECHE", "PRESCHOOL",
			"AFTER SCHOOL", "BREAKFAST CLUB", "HOLIDAY CLUB", "NANNY",
		},
		Regexes: mustCompile(
			`pre-?school`,
			`after\s*school`,
		),
	},
}

// Risk tables, checked on debits before essential and debt tables.
var Risk = Group{
	{
		Name: "gambling",
		Keywords: []string{
			"BET365", "BETFAIR", "WILLIAM HILL", "LADBROKES", "CORAL",
			"PADDY POWER", "BETFRED", "888", "POKERSTARS", "NATIONAL LOTTERY",
			"GROSVENOR CASINO", "TOMBOLA", "SKYBET", "SKY BET", "UNIBET", "BWIN",
			"BETWAY", "FANDUEL", "DRAFTKINGS", "CASUMO", "CASINO",
			"BINGO", "SLOTS", "POKER", "GAMBLING", "BETTING", "LOTTO",
		},
		Regexes: mustCompile(
			`william\s*hill`,
			`paddy\s*power`,
			`national\s*lottery`,
			`grosvenor`,
			`casino`,
			`gambling`,
			`betting`,
		),
		RiskLevel: "critical",
	},
	{
		Name: "bank_charges",
		Keywords: []string{
			"UNPAID ITEM CHARGE", "UNPAID TRANSACTION FEE", "RETURNED ITEM FEE",
			"RETURNED DD FEE", "UNPAID DD CHARGE", "UNPAID SO CHARGE",
			"BOUNCE FEE", "RETURNED PAYMENT FEE", "INSUFFICIENT FUNDS FEE",
			"NSF FEE", "OVERDRAFT FEE", "PENALTY CHARGE", "UNPAID CHARGE",
			"RETURNED FEE", "ITEM FEE",
		},
		Regexes: mustCompile(
			`\b(unpaid|returned|bounced|failed|dishono(u)?red)\b.*\b(charge|fee)\b`,
			`\b(charge|fee)\b.*\b(unpaid|returned|bounced|failed|nsf|insufficient|dishono(u)?red)\b`,
			`\boverdraft\b.*\b(charge|fee)\b`,
			`\bnsf\b.*\b(charge|fee)\b`,
			`\binsufficient\s*funds\b.*\b(charge|fee)\b`,
			`\b(item|transaction)\b.*\b(charge|fee)\b`,
		),
		RiskLevel: "high",
	},
	{
		Name: "failed_payments",
		Keywords: []string{
			"UNPAID DIRECT DEBIT", "UNPAID DD", "DD UNPAID",
			"RETURNED DIRECT DEBIT", "RETURNED DD", "DD RETURNED",
			"BOUNCED PAYMENT", "BOUNCED DD", "BOUNCED DIRECT DEBIT",
			"PAYMENT RETURNED", "PAYMENT BOUNCED", "PAYMENT FAILED",
			"FAILED DIRECT DEBIT", "FAILED DD", "DD FAILED",
			"DISHONOURED DD", "DISHONOURED DIRECT DEBIT", "DISHONOURED PAYMENT",
			"INSUFFICIENT FUNDS DD", "DD RETURN", "DIRECT DEBIT RETURN", "RETURNED PAYMENT",
		},
		Regexes: mustCompile(
			`\b(unpaid|returned|bounced|failed|dishono(u)?red)\s+(direct\s*debit|dd|payment)\b`,
			`\b(direct\s*debit|dd|payment)\s+(unpaid|returned|bounced|failed|dishono(u)?red)\b`,
			`\binsufficient\s*funds?\s+(direct\s*debit|dd)\b`,
			`\bdd\s+(return(ed)?|unpaid|bounced|failed)\b`,
		),
		RiskLevel: "critical",
	},
	{
		Name: "debt_collection",
		Keywords: []string{
			"DEBT COLLECTION", "DCA", "LOWELL", "CABOT", "INTRUM",
			"HOIST", "PAST DUE CREDIT", "ARROW GLOBAL", "LINK FINANCIAL",
			"MOORCROFT", "CAPQUEST", "MACKENZIE HALL", "BW LEGAL",
			"CREDIT SOLUTIONS", "DEBT RECOVERY", "COLLECTIONS",
		},
		Regexes: mustCompile(
			`debt\s*collect(ion|or)?`,
			`past\s*due\s*credit`,
			`arrow\s*global`,
			`link\s*financial`,
			`debt\s*recovery`,
			`\bcollections?\s*(agency|agent)\b`,
		),
		RiskLevel: "severe",
	},
}

// Positive behaviour.
var Positive = Group{
	{
		Name: "savings",
		Keywords: []string{
			"SAVINGS", "ISA", "INVESTMENT", "MONEYBOX", "PLUM", "CHIP",
			"NUTMEG", "VANGUARD", "FIDELITY", "HARGREAVES", "AJ BELL",
			"PREMIUM BONDS", "NS&I",
		},
		Regexes: mustCompile(
			`premium\s*bonds?`,
			`\bns&?i\b`,
		),
	},
}

// TransferKeywords mark a movement between the applicant's own accounts.
var TransferKeywords = []string{
	"OWN ACCOUNT", "INTERNAL TRANSFER", "FROM SAVINGS", "FROM CURRENT",
	"SELF TRANSFER", "MOVED FROM", "MOVED TO", "BETWEEN ACCOUNTS",
	"INTERNAL TFR", "TRANSFER TO", "TRANSFER FROM",
}

// TransferRegexes complement TransferKeywords.
var TransferRegexes = mustCompile(
	`own\s*account`,
	`internal\s*(transfer|tfr)`,
	`from\s*(savings|current)`,
	`between\s*accounts`,
	`self\s*transfer`,
	`(moved|move)\s*(from|to)\s*(savings|current)`,
)

// IsTransferText reports whether the text reads like a transfer between
// accounts.
func IsTransferText(text string) bool {
	if ContainsAnyWord(text, TransferKeywords) {
		return true
	}
	for _, re := range TransferRegexes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
