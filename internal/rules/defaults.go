package rules

// DefaultRules returns the built-in keyword rule table. Order is significant:
// specific sub-category patterns come before the general catch-alls for the
// same vendors.
func DefaultRules() []Rule {
	return []Rule{
		// Cloud sub-services before generic cloud matches.
		{
			Name:         "Managed cloud services",
			Pattern:      `\b(managed\s*services?|msp|cloud\s*management)\b`,
			CategoryPath: "it_services/cloud_services/managed_services",
		},
		{
			Name:         "Azure",
			Pattern:      `\bazure\b`,
			CategoryPath: "it_services/cloud_services",
		},
		{
			Name:         "AWS",
			Pattern:      `\b(aws|amazon\s*web\s*services|ec2|s3)\b`,
			CategoryPath: "it_services/cloud_services",
		},
		{
			Name:         "Google Cloud",
			Pattern:      `\b(gcp|google\s*cloud|bigquery)\b`,
			CategoryPath: "it_services/cloud_services",
		},

		// Security tooling before generic software.
		{
			Name:         "Endpoint security",
			Pattern:      `\b(crowdstrike|sentinelone|falcon|endpoint\s*protection)\b`,
			CategoryPath: "security_software/endpoint",
		},
		{
			Name:         "Network security",
			Pattern:      `\b(palo\s*alto|proofpoint|firewall)\b`,
			CategoryPath: "security_software/network",
		},

		// Development tooling.
		{
			Name:         "Atlassian suite",
			Pattern:      `\b(atlassian|jira|confluence|bitbucket)\b`,
			CategoryPath: "development_tools/collaboration",
		},
		{
			Name:         "Source hosting",
			Pattern:      `\b(github|gitlab)\b`,
			CategoryPath: "development_tools/source_control",
		},
		{
			Name:         "IDE licensing",
			Pattern:      `\b(visual\s*studio|jetbrains)\b`,
			CategoryPath: "development_tools/ide",
		},

		// Enterprise licensing.
		{
			Name:         "Microsoft licensing",
			Pattern:      `\b(microsoft\s*365|office\s*365|m365|microsoft\s*licen)\b`,
			CategoryPath: "enterprise_software/licensing",
		},
		{
			Name:         "Enterprise platforms",
			Pattern:      `\b(oracle|salesforce|sap|workday)\b`,
			CategoryPath: "enterprise_software/platforms",
		},
		{
			Name:         "Creative licensing",
			Pattern:      `\badobe\b`,
			CategoryPath: "enterprise_software/licensing",
		},

		// Services catch-alls last.
		{
			Name:         "Consulting",
			Pattern:      `\b(consulting|professional\s*services|advisory)\b`,
			CategoryPath: "it_services/consulting",
		},
		{
			Name:         "MSP vendors",
			Pattern:      `\b(synoptek|harman)\b`,
			CategoryPath: "it_services/managed_services",
		},
		{
			Name:         "Support contracts",
			Pattern:      `\b(support\s*(contract|plan|renewal)|helpdesk)\b`,
			CategoryPath: "it_services/support",
		},
	}
}
