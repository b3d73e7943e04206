package fundamentals

// us-gaap tag preference lists. Filers report under different concept
// names across taxonomy revisions, so each value is probed in order.
var (
	revenueTags = []string{
		"Revenues",
		"RevenueFromContractWithCustomerExcludingAssessedTax",
		"SalesRevenueNet",
	}
	operatingIncomeTags = []string{
		"OperatingIncomeLoss",
	}
	taxProvisionTags = []string{
		"IncomeTaxExpenseBenefit",
	}
	pretaxIncomeTags = []string{
		"IncomeLossFromContinuingOperationsBeforeIncomeTaxesExtraordinaryItemsNoncontrollingInterest",
		"IncomeLossFromContinuingOperationsBeforeIncomeTaxesMinorityInterestAndIncomeLossFromEquityMethodInvestments",
	}
	totalDebtTags = []string{
		"LongTermDebt",
		"LongTermDebtNoncurrent",
	}
	cashTags = []string{
		"CashAndCashEquivalentsAtCarryingValue",
	}
	equityTags = []string{
		"StockholdersEquity",
		"StockholdersEquityIncludingPortionAttributableToNoncontrollingInterest",
	}
	dividendsTags = []string{
		"PaymentsOfDividends",
		"PaymentsOfDividendsCommonStock",
	}
	netIncomeTags = []string{
		"NetIncomeLoss",
	}
	interestExpenseTags = []string{
		"InterestExpense",
		"InterestExpenseDebt",
	}
	epsTags = []string{
		"EarningsPerShareBasic",
		"EarningsPerShareDiluted",
	}
	sharesTags = []string{
		"WeightedAverageNumberOfSharesOutstandingBasic",
		"WeightedAverageNumberOfDilutedSharesOutstanding",
	}
	grossProfitTags = []string{
		"GrossProfit",
	}
	rndTags = []string{
		"ResearchAndDevelopmentExpense",
	}
	operatingCashFlowTags = []string{
		"NetCashProvidedByUsedInOperatingActivities",
	}
	capexTags = []string{
		"PaymentsToAcquirePropertyPlantAndEquipment",
	}
	cogsTags = []string{
		"CostOfRevenue",
		"CostOfGoodsAndServicesSold",
	}
	inventoryTags = []string{
		"InventoryNet",
	}
	totalAssetsTags = []string{
		"Assets",
	}
	currentAssetsTags = []string{
		"AssetsCurrent",
	}
	currentLiabilitiesTags = []string{
		"LiabilitiesCurrent",
	}
	depreciationTags = []string{
		"DepreciationDepletionAndAmortization",
		"DepreciationAndAmortization",
	}
)
