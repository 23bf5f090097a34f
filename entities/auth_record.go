package entities

// AuthRecord holds the registration details used to log in to one network.
type AuthRecord struct {
	Network  string `json:"network"`
	Nick     string `json:"nick"`
	User     string `json:"user"`
	RealName string `json:"realName"`
	Password string `json:"password,omitempty"`
}
