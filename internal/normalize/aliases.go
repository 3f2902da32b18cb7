package normalize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultVendorAliases maps observed raw vendor-name variants to one
// canonical name. Every canonical name is also listed as its own variant so
// that normalization is idempotent.
var defaultVendorAliases = map[string]string{
	"synoptek":               "Synoptek",
	"synoptek, llc":          "Synoptek",
	"synoptek llc":           "Synoptek",
	"atlassian":              "Atlassian",
	"microsoft":              "Microsoft",
	"microsoft corporation":  "Microsoft",
	"oracle":                 "Oracle",
	"salesforce":             "Salesforce",
	"aws":                    "AWS",
	"amazon":                 "AWS",
	"amazon web services":    "AWS",
	"azure":                  "Microsoft Azure",
	"microsoft azure":        "Microsoft Azure",
	"google":                 "Google",
	"gcp":                    "Google Cloud",
	"google cloud":           "Google Cloud",
	"github":                 "GitHub",
	"gitlab":                 "GitLab",
	"crowdstrike":            "CrowdStrike",
	"sentinelone":            "SentinelOne",
	"palo alto":              "Palo Alto Networks",
	"palo alto networks":     "Palo Alto Networks",
	"proofpoint":             "Proofpoint",
	"harman":                 "Harman",
	"harman connected services": "Harman",
	"markov":                    "Markov Processes",
	"markov processes":          "Markov Processes",
	"markov processes international": "Markov Processes",
}

// defaultCompanyAliases consolidates bill-to / business-unit name variants.
var defaultCompanyAliases = map[string]string{
	"great gray":                      "Great Gray",
	"great gray company":              "Great Gray Trust Company",
	"great gray trust company":        "Great Gray Trust Company",
	"great gray market":               "Great Gray Market",
	"rpag":                            "RPAG",
	"retirement plan advisory group":  "RPAG",
	"flexpath":                        "Flexpath",
	"flexpath advisors":               "Flexpath",
	"flexpath partners":               "Flexpath",
}

// aliasFile is the YAML shape for alias table overrides.
type aliasFile struct {
	Vendors   map[string]string `yaml:"vendors"`
	Companies map[string]string `yaml:"companies"`
}

// LoadAliases reads vendor and company alias tables from a YAML file and
// merges them over the built-in defaults (file entries win).
func LoadAliases(path string) (*Normalizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias file: %w", err)
	}

	var file aliasFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse alias file: %w", err)
	}

	vendors := make(map[string]string, len(defaultVendorAliases)+len(file.Vendors))
	for k, v := range defaultVendorAliases {
		vendors[k] = v
	}
	for k, v := range file.Vendors {
		vendors[k] = v
	}

	companies := make(map[string]string, len(defaultCompanyAliases)+len(file.Companies))
	for k, v := range defaultCompanyAliases {
		companies[k] = v
	}
	for k, v := range file.Companies {
		companies[k] = v
	}

	return NewWithAliases(vendors, companies), nil
}
