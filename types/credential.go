package types

// Credential is one known network. The credential set is ordered and static
// per build; the network session decides which reachable entry to join.
type Credential struct {
	SSID   string `mapstructure:"ssid" json:"ssid"`
	Secret string `mapstructure:"secret" json:"secret"`
}
