package kb

import (
	"regexp"
	"strings"
)

// Entity extraction for knowledge-base indexing. The patterns mirror the
// naming conventions of the reported resources; extraction is best-effort
// and only feeds search metadata.

var (
	configPattern        = regexp.MustCompile(`\b([a-z0-9]+-?[a-z0-9]+(?:patchschedule|schedule|config))\b`)
	vmBoldPattern        = regexp.MustCompile(`\*\*([a-z0-9-]+server[a-z0-9]*)\*\*`)
	vmLabelPattern       = regexp.MustCompile(`vm:\s*([a-z0-9-]+)`)
	resourceGroupPattern = regexp.MustCompile(`rg-[a-z0-9-]+`)
	subscriptionPattern  = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
)

var patchKeywords = []string{
	"failed", "succeeded", "pending", "critical", "security", "reboot", "available patches",
}

// Entities is the indexable metadata extracted from one exchange.
type Entities struct {
	MaintenanceConfigs []string `json:"maintenance_configs"`
	VMs                []string `json:"vms"`
	ResourceGroup      string   `json:"resource_group,omitempty"`
	SubscriptionID     string   `json:"subscription_id,omitempty"`
	PatchKeywords      []string `json:"patch_keywords"`
}

// extractEntities pulls configuration names, VM names, scope identifiers and
// patch keywords out of an agent response.
func extractEntities(response string) Entities {
	lower := strings.ToLower(response)

	entities := Entities{
		MaintenanceConfigs: dedupe(configPattern.FindAllString(lower, -1)),
		VMs:                dedupe(append(captures(vmBoldPattern, lower), captures(vmLabelPattern, lower)...)),
		PatchKeywords:      []string{},
	}

	entities.ResourceGroup = resourceGroupPattern.FindString(lower)
	entities.SubscriptionID = subscriptionPattern.FindString(lower)

	for _, keyword := range patchKeywords {
		if strings.Contains(lower, keyword) {
			entities.PatchKeywords = append(entities.PatchKeywords, keyword)
		}
	}
	return entities
}

func captures(re *regexp.Regexp, s string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		if len(m) > 1 {
			out = append(out, m[1])
		}
	}
	return out
}

// dedupe removes duplicates preserving first-occurrence order.
func dedupe(values []string) []string {
	out := []string{}
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
