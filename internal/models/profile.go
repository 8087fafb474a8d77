package models

// AuthMethodType tags the credential variant carried by an AuthProfile.
type AuthMethodType string

const (
	AuthMethodPassword   AuthMethodType = "password"
	AuthMethodPrivateKey AuthMethodType = "private-key"
)

// AuthMethod is a tagged variant holding the secret material for one
// authentication style. Unused fields stay empty.
type AuthMethod struct {
	Type AuthMethodType `json:"type"`

	// Password-method secret.
	Password SecretValue `json:"password"`

	// Private-key-method secrets.
	PrivateKey SecretValue `json:"privateKey"`
	Passphrase SecretValue `json:"passphrase"`
}

// AuthProfile is a reusable credential set referenced by zero or more
// connections. Its secrets are encrypted identically to connection secrets.
type AuthProfile struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Username   string     `json:"username"`
	AuthMethod AuthMethod `json:"authMethod"`
}

// SecretFields enumerates the secret fields of the profile's auth method.
func (p *AuthProfile) SecretFields() []SecretField {
	switch p.AuthMethod.Type {
	case AuthMethodPrivateKey:
		return []SecretField{
			{Name: "privateKey", Value: &p.AuthMethod.PrivateKey},
			{Name: "passphrase", Value: &p.AuthMethod.Passphrase},
		}
	default:
		return []SecretField{
			{Name: "password", Value: &p.AuthMethod.Password},
		}
	}
}

// AllSecretFields enumerates every secret-capable field regardless of the
// active auth method, for the same reason as
// ConnectionRecord.AllSecretFields: a method switch must not leave the old
// method's secret in a field the writers never visit.
func (p *AuthProfile) AllSecretFields() []SecretField {
	return []SecretField{
		{Name: "password", Value: &p.AuthMethod.Password},
		{Name: "privateKey", Value: &p.AuthMethod.PrivateKey},
		{Name: "passphrase", Value: &p.AuthMethod.Passphrase},
	}
}
