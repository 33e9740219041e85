package model

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// The decoders below accept the shapes produced by the spreadsheet importer
// and older UIs and convert them once into the canonical types.

func (e *MixEntry) UnmarshalJSON(b []byte) error {
	var raw struct {
		VendorProfile string   `json:"vendor_profile"`
		LutechProfile string   `json:"lutech_profile"`
		Profile       string   `json:"profile"`
		Pct           *float64 `json:"pct"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("mix entry: %w", err)
	}
	e.VendorProfile = firstNonEmpty(raw.VendorProfile, raw.LutechProfile, raw.Profile)
	e.Pct = 0
	if raw.Pct != nil {
		e.Pct = *raw.Pct
	}
	return nil
}

func (s *ProfileShare) UnmarshalJSON(b []byte) error {
	var raw struct {
		Profile      string   `json:"profile"`
		PosteProfile string   `json:"poste_profile"`
		BuyerProfile string   `json:"buyer_profile"`
		Pct          *float64 `json:"pct"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("profile share: %w", err)
	}
	s.Profile = firstNonEmpty(raw.Profile, raw.BuyerProfile, raw.PosteProfile)
	s.Pct = 0
	if raw.Pct != nil {
		s.Pct = *raw.Pct
	}
	return nil
}

// UnmarshalJSON detects the mapping shape from the keys of its first entry.
func (m *ProfileMapping) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		// already canonical
		type canonical ProfileMapping
		var c canonical
		if err := json.Unmarshal(trimmed, &c); err != nil {
			return fmt.Errorf("profile mapping: %w", err)
		}
		*m = ProfileMapping(c)
		return nil
	}

	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return fmt.Errorf("profile mapping: %w", err)
	}
	*m = ProfileMapping{Kind: MappingFlat}
	if len(entries) == 0 {
		return nil
	}

	first := entries[0]
	switch {
	case hasKey(first, "month_start"):
		var periods []struct {
			MonthStart *int `json:"month_start"`
			MonthEnd   *int `json:"month_end"`
			Mix        Mix  `json:"mix"`
		}
		if err := json.Unmarshal(trimmed, &periods); err != nil {
			return fmt.Errorf("profile mapping periods: %w", err)
		}
		m.Kind = MappingPeriods
		for _, p := range periods {
			period := MappingPeriod{MonthStart: 1, Mix: p.Mix}
			if p.MonthStart != nil && *p.MonthStart > 0 {
				period.MonthStart = *p.MonthStart
			}
			if p.MonthEnd != nil {
				period.MonthEnd = *p.MonthEnd
			}
			m.Periods = append(m.Periods, period)
		}
	case hasKey(first, "period"):
		var labels []struct {
			Period string `json:"period"`
			Mix    Mix    `json:"mix"`
		}
		if err := json.Unmarshal(trimmed, &labels); err != nil {
			return fmt.Errorf("profile mapping year labels: %w", err)
		}
		m.Kind = MappingYearLabels
		for _, l := range labels {
			year, open := ParseYearLabel(l.Period)
			m.Years = append(m.Years, YearLabel{Label: l.Period, Year: year, OpenEnded: open, Mix: l.Mix})
		}
	default:
		if err := json.Unmarshal(trimmed, &m.Flat); err != nil {
			return fmt.Errorf("profile mapping mix: %w", err)
		}
	}
	return nil
}

// ParseYearLabel parses "Anno 2" into (2, false) and "Anno 3+" into (3, true).
// Unparseable labels return year 0, which never matches.
func ParseYearLabel(label string) (int, bool) {
	s := strings.TrimSpace(label)
	for _, prefix := range []string{"Anno", "Year"} {
		s = strings.TrimPrefix(s, prefix)
	}
	s = strings.TrimSpace(s)
	open := strings.HasSuffix(s, "+")
	s = strings.TrimSpace(strings.TrimSuffix(s, "+"))
	year, err := strconv.Atoi(s)
	if err != nil || year < 1 {
		return 0, false
	}
	return year, open
}

// UnmarshalJSON accepts either a [{tow_id, pct}] list or a {tow_id: pct} map.
func (a *TowAllocation) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*a = nil
		return nil
	}
	if trimmed[0] == '[' {
		var list []struct {
			TowID string   `json:"tow_id"`
			Pct   *float64 `json:"pct"`
		}
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return fmt.Errorf("tow allocation: %w", err)
		}
		out := make(TowAllocation, 0, len(list))
		for _, s := range list {
			share := TowShare{TowID: s.TowID}
			if s.Pct != nil {
				share.Pct = *s.Pct
			}
			out = append(out, share)
		}
		*a = out
		return nil
	}

	var byID map[string]float64
	if err := json.Unmarshal(trimmed, &byID); err != nil {
		return fmt.Errorf("tow allocation: %w", err)
	}
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make(TowAllocation, 0, len(ids))
	for _, id := range ids {
		out = append(out, TowShare{TowID: id, Pct: byID[id]})
	}
	*a = out
	return nil
}

func (w *WorkPackage) UnmarshalJSON(b []byte) error {
	type plain WorkPackage
	var raw struct {
		plain
		TowID              string   `json:"tow_id"`
		ScontoGaraPct      *float64 `json:"sconto_gara_pct"`
		CatalogReuseFactor *float64 `json:"catalog_reuse_factor"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("work package: %w", err)
	}
	*w = WorkPackage(raw.plain)
	if w.ID == "" {
		w.ID = raw.TowID
	}
	if raw.ScontoGaraPct != nil && w.TenderDiscountPct == 0 {
		w.TenderDiscountPct = *raw.ScontoGaraPct
	}
	if raw.CatalogReuseFactor != nil && w.DefaultReuseFactor == 0 {
		w.DefaultReuseFactor = *raw.CatalogReuseFactor
	}
	switch strings.ToLower(strings.TrimSpace(w.Type)) {
	case "catalog", "catalogo":
		w.Type = WorkPackageCatalog
	default:
		w.Type = WorkPackageTeam
	}
	return nil
}

func (c *CatalogCluster) UnmarshalJSON(b []byte) error {
	type plain CatalogCluster
	var raw struct {
		plain
		PosteProfiles []string `json:"poste_profiles"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("catalog cluster: %w", err)
	}
	*c = CatalogCluster(raw.plain)
	if len(c.Profiles) == 0 {
		c.Profiles = raw.PosteProfiles
	}
	return nil
}

func hasKey(m map[string]json.RawMessage, key string) bool {
	_, ok := m[key]
	return ok
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
