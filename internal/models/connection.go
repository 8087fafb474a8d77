package models

// Protocol selects the connection variant. The two variants have disjoint
// secret-field sets.
type Protocol string

const (
	ProtocolSSH Protocol = "ssh"
	ProtocolRDP Protocol = "rdp"
)

// ConnectionRecord is one saved remote-access connection. Secret fields are
// stored on disk as SecretValue (bare plaintext or encrypted payload).
type ConnectionRecord struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Tags     []string `json:"tags,omitempty"`
	Color    string   `json:"color,omitempty"`
	Protocol Protocol `json:"protocol"`

	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username,omitempty"`

	// ProfileID references an AuthProfile by id; empty when the connection
	// carries its own credentials.
	ProfileID string `json:"profileId,omitempty"`

	// SSH secret fields.
	Password      SecretValue `json:"password"`
	KeyPassphrase SecretValue `json:"keyPassphrase"`

	// RDP-specific fields.
	Domain          string      `json:"domain,omitempty"`
	RDPPassword     SecretValue `json:"rdpPassword"`
	GatewayPassword SecretValue `json:"gatewayPassword"`
}

// SecretFields enumerates exactly the secret fields of the record's variant.
func (c *ConnectionRecord) SecretFields() []SecretField {
	switch c.Protocol {
	case ProtocolRDP:
		return []SecretField{
			{Name: "rdpPassword", Value: &c.RDPPassword},
			{Name: "gatewayPassword", Value: &c.GatewayPassword},
		}
	default:
		return []SecretField{
			{Name: "password", Value: &c.Password},
			{Name: "keyPassphrase", Value: &c.KeyPassphrase},
		}
	}
}

// AllSecretFields enumerates every secret-capable field regardless of the
// active variant. Writers (serialize, merge, re-key, scrub) must use this:
// a record whose Protocol changed after its secrets were resolved still
// carries the old variant's value in an inactive field, and that value must
// never reach disk or an export unprotected.
func (c *ConnectionRecord) AllSecretFields() []SecretField {
	return []SecretField{
		{Name: "password", Value: &c.Password},
		{Name: "keyPassphrase", Value: &c.KeyPassphrase},
		{Name: "rdpPassword", Value: &c.RDPPassword},
		{Name: "gatewayPassword", Value: &c.GatewayPassword},
	}
}
