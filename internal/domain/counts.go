package domain

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// FailureCounts maps IP to the number of failure statuses seen for it.
// Iteration and JSON encoding follow insertion order.
type FailureCounts struct {
	m *orderedmap.OrderedMap[string, int]
}

func NewFailureCounts() *FailureCounts {
	return &FailureCounts{m: orderedmap.New[string, int]()}
}

// Add increments the count for ip by n and returns the new total.
func (f *FailureCounts) Add(ip string, n int) int {
	f.init()
	cur, _ := f.m.Get(ip)
	cur += n
	f.m.Set(ip, cur)
	return cur
}

// Set stores count for ip, keeping the position of an existing key.
func (f *FailureCounts) Set(ip string, count int) {
	f.init()
	f.m.Set(ip, count)
}

func (f *FailureCounts) Get(ip string) (int, bool) {
	if f == nil || f.m == nil {
		return 0, false
	}
	return f.m.Get(ip)
}

func (f *FailureCounts) Len() int {
	if f == nil || f.m == nil {
		return 0
	}
	return f.m.Len()
}

// IPs returns the keys in insertion order.
func (f *FailureCounts) IPs() []string {
	ips := make([]string, 0, f.Len())
	f.Each(func(ip string, _ int) {
		ips = append(ips, ip)
	})
	return ips
}

// Each calls fn for every entry in insertion order.
func (f *FailureCounts) Each(fn func(ip string, count int)) {
	if f == nil || f.m == nil {
		return
	}
	for pair := f.m.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Filter returns a new FailureCounts holding the entries keep accepts.
func (f *FailureCounts) Filter(keep func(ip string, count int) bool) *FailureCounts {
	out := NewFailureCounts()
	f.Each(func(ip string, count int) {
		if keep(ip, count) {
			out.m.Set(ip, count)
		}
	})
	return out
}

// ToMap copies the entries into a plain map.
func (f *FailureCounts) ToMap() map[string]int {
	out := make(map[string]int, f.Len())
	f.Each(func(ip string, count int) {
		out[ip] = count
	})
	return out
}

func (f *FailureCounts) MarshalJSON() ([]byte, error) {
	if f == nil || f.m == nil || f.m.Len() == 0 {
		return []byte("{}"), nil
	}
	return f.m.MarshalJSON()
}

func (f *FailureCounts) UnmarshalJSON(data []byte) error {
	f.m = orderedmap.New[string, int]()
	return f.m.UnmarshalJSON(data)
}

func (f *FailureCounts) init() {
	if f.m == nil {
		f.m = orderedmap.New[string, int]()
	}
}

// ThreatMap maps IP to a threat description, in source order.
// It holds one fetched snapshot for the duration of a run.
type ThreatMap struct {
	m *orderedmap.OrderedMap[string, string]
}

func NewThreatMap() *ThreatMap {
	return &ThreatMap{m: orderedmap.New[string, string]()}
}

// Put stores description for ip. A repeated IP keeps its first position and the latest description.
func (t *ThreatMap) Put(ip, description string) {
	if t.m == nil {
		t.m = orderedmap.New[string, string]()
	}
	t.m.Set(ip, description)
}

func (t *ThreatMap) Lookup(ip string) (string, bool) {
	if t == nil || t.m == nil {
		return "", false
	}
	return t.m.Get(ip)
}

func (t *ThreatMap) Len() int {
	if t == nil || t.m == nil {
		return 0
	}
	return t.m.Len()
}

// Each calls fn for every entry in source order.
func (t *ThreatMap) Each(fn func(ip, description string)) {
	if t == nil || t.m == nil {
		return
	}
	for pair := t.m.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

func (t *ThreatMap) ToMap() map[string]string {
	out := make(map[string]string, t.Len())
	t.Each(func(ip, description string) {
		out[ip] = description
	})
	return out
}

func (t *ThreatMap) MarshalJSON() ([]byte, error) {
	if t == nil || t.m == nil || t.m.Len() == 0 {
		return []byte("{}"), nil
	}
	return t.m.MarshalJSON()
}

func (t *ThreatMap) UnmarshalJSON(data []byte) error {
	t.m = orderedmap.New[string, string]()
	return t.m.UnmarshalJSON(data)
}

// CombinedReport merges the failed-login counts with the matched threats.
type CombinedReport struct {
	FailedLogins   *FailureCounts  `json:"failed_logins"`
	MatchedThreats []MatchedThreat `json:"matched_threats"`
}
