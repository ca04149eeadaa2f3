package azure

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	credentialsHeaderBannerConstant   = "================== AZURE CREDENTIALS =================="
	credentialsFooterBannerConstant   = "======================================================="
	credentialsIndentConstant         = "  "
	credentialsRenderTemplateConstant = "%s\n%s\n%s\n"
)

// Credentials is the secret bundle printed for GitHub Actions consumption.
type Credentials struct {
	ClientIdentifier       string `json:"clientId"`
	ClientSecret           string `json:"clientSecret"`
	TenantIdentifier       string `json:"tenantId"`
	SubscriptionIdentifier string `json:"subscriptionId"`
}

// RenderCredentialsBlock formats the credentials as indented JSON framed by banner lines.
func RenderCredentialsBlock(credentials Credentials) (string, error) {
	encodedCredentials, encodeError := json.MarshalIndent(credentials, "", credentialsIndentConstant)
	if encodeError != nil {
		return "", encodeError
	}
	return fmt.Sprintf(credentialsRenderTemplateConstant, credentialsHeaderBannerConstant, strings.TrimSpace(string(encodedCredentials)), credentialsFooterBannerConstant), nil
}
