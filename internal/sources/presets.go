package sources

import "time"

const defaultRateLimit = 2 * time.Second

// Presets returns the built-in Canadian procurement portal configurations.
// A YAML sources file, when present, replaces these entirely.
func Presets() []Config {
	return []Config{
		{
			ID: "canadabuys", Name: "CanadaBuys",
			Strategy: StrategyFeed,
			BaseURL:  "https://canadabuys.canada.ca",
			SearchURL: "https://canadabuys.canada.ca/opendata/pub/" +
				"newTenderNotice-nouvelAvisAppelOffres.csv",
			Tier: TierHigh, Enabled: true,
			RateLimit: defaultRateLimit,
		},
		{
			ID: "merx", Name: "MERX",
			Strategy:  StrategyBrowser,
			BaseURL:   "https://www.merx.com",
			SearchURL: "https://www.merx.com/public/solicitations/open",
			Query:     "training", RequiresBrowser: true,
			Tier: TierHigh, Enabled: true,
			RateLimit: defaultRateLimit,
		},
		{
			ID: "bcbid", Name: "BC Bid",
			Strategy:  StrategyBrowser,
			BaseURL:   "https://www.bcbid.gov.bc.ca",
			SearchURL: "https://www.bcbid.gov.bc.ca/page.aspx/en/rfp/request_browse_public",
			RequiresBrowser: true,
			Tier:            TierHigh, Enabled: true,
			RateLimit: defaultRateLimit,
		},
		{
			ID: "seao", Name: "SEAO Quebec",
			Strategy: StrategyBrowser,
			BaseURL:  "https://seao.gouv.qc.ca",
			RequiresBrowser: true,
			Tier:            TierHigh, Enabled: true,
			RateLimit: defaultRateLimit,
		},
		{
			ID: "biddingo", Name: "Biddingo",
			Strategy: StrategyBrowser,
			BaseURL:  "https://www.biddingo.com",
			RequiresBrowser: true,
			Tier:            TierMedium, Enabled: true,
			RateLimit: defaultRateLimit,
		},
		{
			ID: "bidsandtenders", Name: "Bids&Tenders",
			Strategy:  StrategyBrowser,
			BaseURL:   "https://www.bidsandtenders.ca",
			SearchURL: "https://www.bidsandtenders.ca/section/opportunities/opportunities.asp?type=1&show=all",
			RequiresBrowser: true,
			Tier:            TierMedium, Enabled: true,
			RateLimit: defaultRateLimit,
		},
		{
			ID: "albertapurchasing", Name: "Alberta Purchasing Connection",
			Strategy: StrategyBrowser,
			BaseURL:  "https://www.alberta.ca/purchasing-connection.aspx",
			RequiresBrowser: true,
			Tier:            TierHigh, Enabled: true,
			RateLimit: defaultRateLimit,
		},
		{
			ID: "sasktenders", Name: "Saskatchewan Tenders",
			Strategy: StrategyBrowser,
			BaseURL:  "https://www.sasktenders.ca",
			RequiresBrowser: true,
			Tier:            TierHigh, Enabled: true,
			RateLimit: defaultRateLimit,
		},
		{
			ID: "manitoba", Name: "Manitoba Tenders",
			Strategy: StrategyHybrid,
			BaseURL:  "https://www.gov.mb.ca/tenders",
			Tier:     TierHigh, Enabled: true,
			RateLimit: defaultRateLimit,
		},
		{
			ID: "ontario", Name: "Ontario Tenders",
			Strategy: StrategyBrowser,
			BaseURL:  "https://www.ontario.ca/tenders",
			RequiresBrowser: true,
			Tier:            TierHigh, Enabled: true,
			RateLimit: defaultRateLimit,
		},
		{
			ID: "ns", Name: "Nova Scotia Tenders",
			Strategy: StrategyBrowser,
			BaseURL:  "https://novascotia.ca/tenders",
			RequiresBrowser: true,
			Tier:            TierHigh, Enabled: true,
			RateLimit: defaultRateLimit,
		},
		{
			ID: "calgary", Name: "City of Calgary Procurement",
			Strategy: StrategyBrowser,
			BaseURL:  "https://www.calgary.ca/procurement",
			RequiresBrowser: true,
			Tier:            TierMedium, Enabled: true,
			RateLimit: defaultRateLimit,
		},
		{
			ID: "winnipeg", Name: "City of Winnipeg Bids",
			Strategy: StrategyHybrid,
			BaseURL:  "https://www.winnipeg.ca/bids",
			Tier:     TierMedium, Enabled: true,
			RateLimit: defaultRateLimit,
		},
		{
			ID: "vancouver", Name: "City of Vancouver Procurement",
			Strategy: StrategyBrowser,
			BaseURL:  "https://vancouver.ca/procurement",
			RequiresBrowser: true,
			Tier:            TierMedium, Enabled: true,
			RateLimit: defaultRateLimit,
		},
		{
			ID: "halifax", Name: "City of Halifax Procurement",
			Strategy: StrategyBrowser,
			BaseURL:  "https://www.halifax.ca/procurement",
			RequiresBrowser: true,
			Tier:            TierMedium, Enabled: true,
			RateLimit: defaultRateLimit,
		},
		{
			ID: "regina", Name: "City of Regina Procurement",
			Strategy: StrategyBrowser,
			BaseURL:  "https://www.regina.ca/procurement",
			RequiresBrowser: true,
			Tier:            TierMedium, Enabled: true,
			RateLimit: defaultRateLimit,
		},
		{
			ID: "nbon", Name: "NBON New Brunswick",
			Strategy: StrategyBrowser,
			BaseURL:  "https://www.nbon.ca",
			RequiresBrowser: true,
			Tier:            TierMedium, Enabled: true,
			RateLimit: defaultRateLimit,
		},
		{
			ID: "pei", Name: "PEI Tenders",
			Strategy: StrategyHybrid,
			BaseURL:  "https://www.princeedwardisland.ca/tenders",
			Tier:     TierMedium, Enabled: true,
			RateLimit: defaultRateLimit,
		},
		{
			ID: "nl", Name: "Newfoundland Procurement",
			Strategy: StrategyHybrid,
			BaseURL:  "https://www.gov.nl.ca/procurement",
			Tier:     TierMedium, Enabled: true,
			RateLimit: defaultRateLimit,
		},
	}
}
