//go:build !ios && !android && (amd64 || arm64)

package schema

import (
	"regexp"
	"testing"
)

func TestKeys(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"global ipv4", GlobalKey(DomainState, EntityIPv4), "State:/Network/Global/IPv4"},
		{"setup dns", ServiceKey(DomainSetup, "ABC", EntityDNS), "Setup:/Network/Service/ABC/DNS"},
		{"service root", ServiceKey(DomainSetup, "ABC", ""), "Setup:/Network/Service/ABC"},
		{"interface", InterfaceKey(DomainState, "en0", EntityLink), "State:/Network/Interface/en0/Link"},
		{"interface list", InterfaceListKey(DomainState), "State:/Network/Interface"},
		{"hostnames", HostNamesKey(), "Setup:/Network/HostNames"},
		{"computer name", ComputerNameKey(), "Setup:/System"},
		{"pref path", PrefPath(PrefSets, "X"), "/Sets/X"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestServicePattern(t *testing.T) {
	both := regexp.MustCompile("^" + ServicePattern("", EntityDNS) + "$")
	state := regexp.MustCompile("^" + ServicePattern(DomainState, EntityDNS) + "$")

	for _, key := range []string{"State:/Network/Service/A/DNS", "Setup:/Network/Service/B/DNS"} {
		if !both.MatchString(key) {
			t.Errorf("pattern should match %q", key)
		}
	}
	if state.MatchString("Setup:/Network/Service/B/DNS") {
		t.Error("state pattern matched a setup key")
	}
	if both.MatchString("State:/Network/Service/A/B/DNS") {
		t.Error("pattern matched a nested key")
	}
	if !regexp.MustCompile("^" + InterfacePattern(DomainState, EntityIPv4) + "$").MatchString("State:/Network/Interface/en0/IPv4") {
		t.Error("interface pattern did not match")
	}
}

func TestParseKey(t *testing.T) {
	p, ok := ParseKey("Setup:/Network/Service/1234/DNS")
	if !ok {
		t.Fatal("ParseKey failed")
	}
	if p.Domain != DomainSetup || p.Kind != CompService || p.ID != "1234" || p.Entity != EntityDNS {
		t.Errorf("unexpected parse: %+v", p)
	}

	p, ok = ParseKey("State:/Network/Interface/en0")
	if !ok || p.Kind != CompInterface || p.ID != "en0" || p.Entity != "" {
		t.Errorf("unexpected parse: %+v %v", p, ok)
	}

	for _, bad := range []string{"", "State:", "State:/Network/Global/IPv4", "Network/Service/x/DNS", "State:/Network/Service//DNS", "State:/Network/Service/a/b/c"} {
		if _, ok := ParseKey(bad); ok {
			t.Errorf("ParseKey(%q) should fail", bad)
		}
	}
}
