package gateway

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Rule extracts one optional value from a provider document.
type Rule func(doc map[string]any) (string, bool)

// Path returns a Rule reading a string-like value at the dotted key path,
// e.g. "data.tx_ref". Numbers are formatted; empty strings count as absent.
func Path(path string) Rule {
	keys := strings.Split(path, ".")
	return func(doc map[string]any) (string, bool) {
		var cur any = doc
		for _, k := range keys {
			m, ok := asMap(cur)
			if !ok {
				return "", false
			}
			cur, ok = m[k]
			if !ok {
				return "", false
			}
		}
		return scalar(cur)
	}
}

// Lookup tries rules in order and returns the first hit.
func Lookup(doc map[string]any, rules []Rule) (string, bool) {
	if doc == nil {
		return "", false
	}
	for _, r := range rules {
		if v, ok := r(doc); ok {
			return v, true
		}
	}
	return "", false
}

// Extraction rules, in priority order.
var (
	InitExternalIDRules = []Rule{Path("data.id"), Path("data.tx_id"), Path("data.reference")}
	CheckoutURLRules    = []Rule{Path("data.checkout_url"), Path("data.payment_link"), Path("checkout_url")}

	// WebhookTxRefRules covers the body only; query parameters are the caller's last resort.
	WebhookTxRefRules = []Rule{Path("tx_ref"), Path("reference"), Path("data.tx_ref"), Path("data.reference")}
	// WebhookQueryTxRefKeys are tried after WebhookTxRefRules.
	WebhookQueryTxRefKeys = []string{"reference", "tx_ref"}

	// Top-level "status" on a verify response describes the API call, not the payment.
	VerifyStatusRules  = []Rule{Path("data.status"), Path("message")}
	WebhookStatusRules = []Rule{Path("data.status"), Path("status"), Path("message")}

	ProviderReferenceRules = []Rule{Path("data.reference"), Path("data.tx_ref"), Path("reference")}
)

var successStatuses = []string{"successful", "success", "completed", "paid"}

// IsSuccessStatus matches the provider's synonyms for a settled payment.
func IsSuccessStatus(status string) bool {
	return lo.Contains(successStatuses, strings.ToLower(strings.TrimSpace(status)))
}

// Result is the typed view of a verify response or webhook payload.
type Result struct {
	TxRef      string
	ExternalID string
	// Status is the raw provider signal; empty when none was found.
	Status  string
	Success bool
}

// InitResult is the typed view of an initialize response.
type InitResult struct {
	ExternalID  string
	CheckoutURL string
}

func ParseInitialize(doc map[string]any) InitResult {
	var r InitResult
	r.ExternalID, _ = Lookup(doc, InitExternalIDRules)
	r.CheckoutURL, _ = Lookup(doc, CheckoutURLRules)
	return r
}

func ParseVerify(doc map[string]any) Result {
	return parse(doc, VerifyStatusRules)
}

// ParseWebhook reads the body rules first and falls back to query parameters for the reference.
func ParseWebhook(doc map[string]any, query map[string]string) Result {
	r := parse(doc, WebhookStatusRules)
	r.TxRef, _ = Lookup(doc, WebhookTxRefRules)
	if r.TxRef == "" {
		for _, k := range WebhookQueryTxRefKeys {
			if v := strings.TrimSpace(query[k]); v != "" {
				r.TxRef = v
				break
			}
		}
	}
	return r
}

func parse(doc map[string]any, statusRules []Rule) Result {
	var r Result
	r.Status, _ = Lookup(doc, statusRules)
	r.Success = IsSuccessStatus(r.Status)
	r.ExternalID, _ = Lookup(doc, ProviderReferenceRules)
	r.TxRef, _ = Lookup(doc, []Rule{Path("data.tx_ref"), Path("tx_ref")})
	return r
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Response:
		return m, true
	default:
		return nil, false
	}
}

func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case float64:
		return fmt.Sprintf("%v", t), true
	case bool:
		return fmt.Sprintf("%t", t), true
	case int, int64:
		return fmt.Sprintf("%d", t), true
	default:
		return "", false
	}
}
