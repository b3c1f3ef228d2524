package porkbun

// Request and response payloads for the Porkbun v3 JSON API. Credentials ride
// in the body of every request, so none of these types may be logged.

type authPayload struct {
	APIKey       string `json:"apikey"`
	SecretAPIKey string `json:"secretapikey"`
}

type editPayload struct {
	authPayload
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
	TTL     string `json:"ttl"`
}

type dnsRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
	TTL     string `json:"ttl"`
}

type retrieveResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Records []dnsRecord `json:"records"`
}

type apiResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Record is the domain-level view of a target's A record at the provider.
// Exists=false means no A record is provisioned for the host; the service
// never creates one.
type Record struct {
	Exists  bool
	ID      string
	Content string
}
