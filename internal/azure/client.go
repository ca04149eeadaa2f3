package azure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/arktecquant/devkit/internal/execshell"
)

const (
	activeDirectorySubcommandConstant      = "ad"
	servicePrincipalSubcommandConstant     = "sp"
	showSubcommandConstant                 = "show"
	createForRBACSubcommandConstant        = "create-for-rbac"
	credentialSubcommandConstant           = "credential"
	resetSubcommandConstant                = "reset"
	roleSubcommandConstant                 = "role"
	assignmentSubcommandConstant           = "assignment"
	createSubcommandConstant               = "create"
	keyVaultSubcommandConstant             = "keyvault"
	secretSubcommandConstant               = "secret"
	listSubcommandConstant                 = "list"
	staticWebAppSubcommandConstant         = "staticwebapp"
	identifierFlagConstant                 = "--id"
	nameFlagConstant                       = "--name"
	queryFlagConstant                      = "--query"
	outputFlagConstant                     = "-o"
	assigneeFlagConstant                   = "--assignee"
	roleFlagConstant                       = "--role"
	scopeFlagConstant                      = "--scope"
	vaultNameFlagConstant                  = "--vault-name"
	resourceGroupFlagConstant              = "--resource-group"
	locationFlagConstant                   = "--location"
	skuFlagConstant                        = "--sku"
	sourceFlagConstant                     = "--source"
	skipAssignmentFlagConstant             = "--skip-assignment"
	jsonOutputFormatConstant               = "json"
	tsvOutputFormatConstant                = "tsv"
	tenantQueryConstant                    = "appOwnerOrganizationId"
	objectIdentifierQueryConstant          = "id"
	passwordQueryConstant                  = "password"
	createCredentialsQueryConstant         = "{clientId: appId, clientSecret: password, tenantId: tenant}"
	secretPrefixQueryTemplateConstant      = "[?starts_with(name, '%s')].name"
	freeSKUNameConstant                    = "Free"
	placeholderSourceConstant              = "."
	azureExecutorMissingMessageConstant    = "azure executor not configured"
	displayNameRequiredMessageConstant     = "service principal display name required"
	clientIdentifierRequiredMessageConst   = "client identifier required"
	assigneeRequiredMessageConstant        = "assignee object identifier required"
	roleNameRequiredMessageConstant        = "role name required"
	scopeRequiredMessageConstant           = "role scope required"
	vaultNameRequiredMessageConstant       = "key vault name required"
	webAppNameRequiredMessageConstant      = "static web app name required"
	resourceGroupRequiredMessageConstant   = "resource group required"
	locationRequiredMessageConstant        = "location required"
	servicePrincipalDecodeTemplateConstant = "failed to decode service principal payload: %w"
	credentialsDecodeTemplateConstant      = "failed to decode created credentials: %w"
	emptySecretMessageConstant             = "credential reset returned an empty secret"
)

// Sentinel errors reported by Client.
var (
	ErrAzureExecutorNotConfigured = errors.New(azureExecutorMissingMessageConstant)
	ErrDisplayNameRequired        = errors.New(displayNameRequiredMessageConstant)
	ErrClientIdentifierRequired   = errors.New(clientIdentifierRequiredMessageConst)
	ErrAssigneeRequired           = errors.New(assigneeRequiredMessageConstant)
	ErrRoleNameRequired           = errors.New(roleNameRequiredMessageConstant)
	ErrScopeRequired              = errors.New(scopeRequiredMessageConstant)
	ErrVaultNameRequired          = errors.New(vaultNameRequiredMessageConstant)
	ErrWebAppNameRequired         = errors.New(webAppNameRequiredMessageConstant)
	ErrResourceGroupRequired      = errors.New(resourceGroupRequiredMessageConstant)
	ErrLocationRequired           = errors.New(locationRequiredMessageConstant)
	ErrEmptyClientSecret          = errors.New(emptySecretMessageConstant)
)

// AzureExecutor describes the command execution capability Client relies on.
type AzureExecutor interface {
	ExecuteAzure(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ServicePrincipal identifies an existing service principal.
type ServicePrincipal struct {
	ClientIdentifier string
	ObjectIdentifier string
	TenantIdentifier string
}

// CreatedServicePrincipal carries the credentials returned for a freshly created service principal.
type CreatedServicePrincipal struct {
	ClientIdentifier string
	ClientSecret     string
	TenantIdentifier string
	ObjectIdentifier string
}

// Client performs individual az CLI operations.
type Client struct {
	azureExecutor AzureExecutor
}

// NewClient constructs a Client backed by the provided executor.
func NewClient(azureExecutor AzureExecutor) (*Client, error) {
	if azureExecutor == nil {
		return nil, ErrAzureExecutorNotConfigured
	}
	return &Client{azureExecutor: azureExecutor}, nil
}

type servicePrincipalPayload struct {
	ApplicationIdentifier string `json:"appId"`
	ObjectIdentifier      string `json:"id"`
}

type createdCredentialsPayload struct {
	ClientIdentifier string `json:"clientId"`
	ClientSecret     string `json:"clientSecret"`
	TenantIdentifier string `json:"tenantId"`
}

// LookupServicePrincipal finds a service principal by display name.
//
// Any az failure is treated as not found so callers can fall through to
// creation without distinguishing lookup errors from genuine misses.
func (client *Client) LookupServicePrincipal(executionContext context.Context, displayName string) (ServicePrincipal, bool, error) {
	trimmedDisplayName := strings.TrimSpace(displayName)
	if len(trimmedDisplayName) == 0 {
		return ServicePrincipal{}, false, ErrDisplayNameRequired
	}

	showResult, showError := client.execute(executionContext, activeDirectorySubcommandConstant, servicePrincipalSubcommandConstant, showSubcommandConstant, identifierFlagConstant, trimmedDisplayName)
	if showError != nil || len(strings.TrimSpace(showResult.StandardOutput)) == 0 {
		return ServicePrincipal{}, false, nil
	}

	var payload servicePrincipalPayload
	if decodeError := json.Unmarshal([]byte(showResult.StandardOutput), &payload); decodeError != nil {
		return ServicePrincipal{}, false, fmt.Errorf(servicePrincipalDecodeTemplateConstant, decodeError)
	}

	tenantResult, tenantError := client.execute(executionContext, activeDirectorySubcommandConstant, servicePrincipalSubcommandConstant, showSubcommandConstant, identifierFlagConstant, payload.ApplicationIdentifier, queryFlagConstant, tenantQueryConstant, outputFlagConstant, tsvOutputFormatConstant)
	if tenantError != nil {
		return ServicePrincipal{}, false, tenantError
	}

	return ServicePrincipal{
		ClientIdentifier: payload.ApplicationIdentifier,
		ObjectIdentifier: payload.ObjectIdentifier,
		TenantIdentifier: strings.TrimSpace(tenantResult.StandardOutput),
	}, true, nil
}

// CreateServicePrincipal creates a service principal without role assignments and resolves its object identifier.
func (client *Client) CreateServicePrincipal(executionContext context.Context, displayName string) (CreatedServicePrincipal, error) {
	trimmedDisplayName := strings.TrimSpace(displayName)
	if len(trimmedDisplayName) == 0 {
		return CreatedServicePrincipal{}, ErrDisplayNameRequired
	}

	createResult, createError := client.execute(executionContext, activeDirectorySubcommandConstant, servicePrincipalSubcommandConstant, createForRBACSubcommandConstant, nameFlagConstant, trimmedDisplayName, skipAssignmentFlagConstant, queryFlagConstant, createCredentialsQueryConstant, outputFlagConstant, jsonOutputFormatConstant)
	if createError != nil {
		return CreatedServicePrincipal{}, createError
	}

	var payload createdCredentialsPayload
	if decodeError := json.Unmarshal([]byte(createResult.StandardOutput), &payload); decodeError != nil {
		return CreatedServicePrincipal{}, fmt.Errorf(credentialsDecodeTemplateConstant, decodeError)
	}

	objectResult, objectError := client.execute(executionContext, activeDirectorySubcommandConstant, servicePrincipalSubcommandConstant, showSubcommandConstant, identifierFlagConstant, payload.ClientIdentifier, queryFlagConstant, objectIdentifierQueryConstant, outputFlagConstant, tsvOutputFormatConstant)
	if objectError != nil {
		return CreatedServicePrincipal{}, objectError
	}

	return CreatedServicePrincipal{
		ClientIdentifier: payload.ClientIdentifier,
		ClientSecret:     payload.ClientSecret,
		TenantIdentifier: payload.TenantIdentifier,
		ObjectIdentifier: strings.TrimSpace(objectResult.StandardOutput),
	}, nil
}

// ResetClientSecret issues a credential reset and returns the new client secret.
func (client *Client) ResetClientSecret(executionContext context.Context, clientIdentifier string) (string, error) {
	trimmedClientIdentifier := strings.TrimSpace(clientIdentifier)
	if len(trimmedClientIdentifier) == 0 {
		return "", ErrClientIdentifierRequired
	}

	resetResult, resetError := client.execute(executionContext, activeDirectorySubcommandConstant, servicePrincipalSubcommandConstant, credentialSubcommandConstant, resetSubcommandConstant, identifierFlagConstant, trimmedClientIdentifier, queryFlagConstant, passwordQueryConstant, outputFlagConstant, tsvOutputFormatConstant)
	if resetError != nil {
		return "", resetError
	}

	clientSecret := strings.TrimSpace(resetResult.StandardOutput)
	if len(clientSecret) == 0 {
		return "", ErrEmptyClientSecret
	}
	return clientSecret, nil
}

// AssignRole creates a role assignment for the assignee at the provided scope.
func (client *Client) AssignRole(executionContext context.Context, assigneeObjectIdentifier string, roleName string, scope string) error {
	if len(strings.TrimSpace(assigneeObjectIdentifier)) == 0 {
		return ErrAssigneeRequired
	}
	if len(strings.TrimSpace(roleName)) == 0 {
		return ErrRoleNameRequired
	}
	if len(strings.TrimSpace(scope)) == 0 {
		return ErrScopeRequired
	}

	_, assignmentError := client.execute(executionContext, roleSubcommandConstant, assignmentSubcommandConstant, createSubcommandConstant, assigneeFlagConstant, assigneeObjectIdentifier, roleFlagConstant, roleName, scopeFlagConstant, scope)
	return assignmentError
}

// ListSecretNames returns the names of vault secrets whose names start with namePrefix.
func (client *Client) ListSecretNames(executionContext context.Context, vaultName string, namePrefix string) ([]string, error) {
	trimmedVaultName := strings.TrimSpace(vaultName)
	if len(trimmedVaultName) == 0 {
		return nil, ErrVaultNameRequired
	}

	prefixQuery := fmt.Sprintf(secretPrefixQueryTemplateConstant, namePrefix)
	listResult, listError := client.execute(executionContext, keyVaultSubcommandConstant, secretSubcommandConstant, listSubcommandConstant, vaultNameFlagConstant, trimmedVaultName, queryFlagConstant, prefixQuery, outputFlagConstant, tsvOutputFormatConstant)
	if listError != nil {
		return nil, listError
	}

	var secretNames []string
	for _, line := range strings.Split(listResult.StandardOutput, "\n") {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) > 0 {
			secretNames = append(secretNames, trimmedLine)
		}
	}
	return secretNames, nil
}

// CreateStaticWebApp creates a Free-sku Static Web App in the provided resource group.
func (client *Client) CreateStaticWebApp(executionContext context.Context, webAppName string, resourceGroup string, location string) error {
	if len(strings.TrimSpace(webAppName)) == 0 {
		return ErrWebAppNameRequired
	}
	if len(strings.TrimSpace(resourceGroup)) == 0 {
		return ErrResourceGroupRequired
	}
	if len(strings.TrimSpace(location)) == 0 {
		return ErrLocationRequired
	}

	_, creationError := client.execute(executionContext, staticWebAppSubcommandConstant, createSubcommandConstant, nameFlagConstant, webAppName, resourceGroupFlagConstant, resourceGroup, locationFlagConstant, location, skuFlagConstant, freeSKUNameConstant, sourceFlagConstant, placeholderSourceConstant)
	return creationError
}

func (client *Client) execute(executionContext context.Context, arguments ...string) (execshell.ExecutionResult, error) {
	return client.azureExecutor.ExecuteAzure(executionContext, execshell.CommandDetails{Arguments: arguments})
}
