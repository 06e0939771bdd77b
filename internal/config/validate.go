package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a cleaned-up copy of cfg plus any problems found.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Aggregation.Priority = trimList(out.Aggregation.Priority)
	out.Refresh.Locations = trimList(out.Refresh.Locations)
	out.Email.Senders = trimList(out.Email.Senders)

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be between 1 and 65535")
	}

	if out.Aggregation.PolitenessDelayMS < 0 {
		res.addErr("aggregation.politeness_delay_ms must be >= 0")
	} else if out.Aggregation.PolitenessDelayMS > 0 && out.Aggregation.PolitenessDelayMS < 100 {
		res.addWarn("aggregation.politeness_delay_ms is very low (%d) and may trip rate limits.", out.Aggregation.PolitenessDelayMS)
	}
	if out.Aggregation.MaxSources < 0 {
		res.addErr("aggregation.max_sources must be >= 0")
	}
	if out.Aggregation.MaxAfterSpecialized < 0 {
		res.addErr("aggregation.max_after_specialized must be >= 0")
	}
	if out.Aggregation.AdapterTimeoutSeconds < 0 {
		res.addErr("aggregation.adapter_timeout_seconds must be >= 0")
	}

	if out.Refresh.Enabled {
		if out.Refresh.IntervalSeconds <= 0 {
			res.addErr("refresh.interval_seconds must be > 0 when refresh.enabled=true")
		} else if out.Refresh.IntervalSeconds < 300 {
			res.addWarn("refresh.interval_seconds is very low (%d); public sources may throttle repeated sweeps.", out.Refresh.IntervalSeconds)
		}
		if len(out.Refresh.Locations) == 0 {
			res.addWarn("refresh is enabled but refresh.locations is empty; nothing will be refreshed.")
		}
	}

	// password lives in the keychain, not here
	if out.Email.Enabled {
		if strings.TrimSpace(out.Email.IMAPHost) == "" {
			res.addErr("email.imap_host is required when email.enabled=true")
		}
		if out.Email.IMAPPort == 0 {
			res.addErr("email.imap_port is required when email.enabled=true")
		}
		if strings.TrimSpace(out.Email.Username) == "" {
			res.addErr("email.username is required when email.enabled=true")
		}
		if len(out.Email.Senders) == 0 {
			res.addWarn("email.senders is empty; every unread message will be scanned.")
		}
	}

	if out.Parcels.Enabled {
		if strings.TrimSpace(out.Parcels.Shapefile) == "" {
			res.addErr("parcels.shapefile is required when parcels.enabled=true")
		}
		if len(out.Parcels.Fields) == 0 {
			res.addWarn("parcels.fields is empty; attribute columns will not be mapped.")
		}
	}

	return out, res
}
