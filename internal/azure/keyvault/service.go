package keyvault

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arktecquant/devkit/internal/azure"
)

const (
	servicePrincipalNameSuffixConstant     = "-sp"
	secretsUserRoleNameConstant            = "Key Vault Secrets User"
	vaultScopeTemplateConstant             = "/subscriptions/%s/resourceGroups/%s/providers/Microsoft.KeyVault/vaults/%s"
	secretScopeTemplateConstant            = vaultScopeTemplateConstant + "/secrets/%s"
	repositoryNameRequiredMessageConstant  = "repository name must be provided"
	subscriptionRequiredMessageConstant    = "subscription identifier must be provided"
	resourceGroupRequiredMessageConstant   = "resource group must be provided"
	vaultNameRequiredMessageConstant       = "key vault name must be provided"
	provisionerMissingMessageConstant      = "service principal provisioner not configured"
	roleClientMissingMessageConstant       = "role assignment client not configured"
	noMatchingSecretsTemplateConstant      = "no secrets in vault %q match prefix %q"
	secretListFailureTemplateConstant      = "failed to list vault secrets: %w"
	roleAssignmentFailureTemplateConstant  = "failed to assign %q at %s: %w"
	provisioningFailureTemplateConstant    = "failed to provision service principal %s: %w"
	noMatchingSecretsSentinelMessageConst  = "no secrets match the requested prefix"
)

// ErrRepositoryNameRequired indicates the repository name option was empty.
var ErrRepositoryNameRequired = errors.New(repositoryNameRequiredMessageConstant)

// ErrSubscriptionRequired indicates the subscription identifier option was empty.
var ErrSubscriptionRequired = errors.New(subscriptionRequiredMessageConstant)

// ErrResourceGroupRequired indicates the resource group option was empty.
var ErrResourceGroupRequired = errors.New(resourceGroupRequiredMessageConstant)

// ErrVaultNameRequired indicates the key vault name option was empty.
var ErrVaultNameRequired = errors.New(vaultNameRequiredMessageConstant)

// ErrProvisionerNotConfigured indicates the provisioner dependency was missing.
var ErrProvisionerNotConfigured = errors.New(provisionerMissingMessageConstant)

// ErrRoleClientNotConfigured indicates the role assignment client dependency was missing.
var ErrRoleClientNotConfigured = errors.New(roleClientMissingMessageConstant)

// ErrNoMatchingSecrets indicates prefix mode matched no vault secrets.
var ErrNoMatchingSecrets = errors.New(noMatchingSecretsSentinelMessageConst)

// ServicePrincipalProvisioner reuses or creates service principals by display name.
type ServicePrincipalProvisioner interface {
	EnsureServicePrincipal(executionContext context.Context, displayName string) (azure.ProvisionedServicePrincipal, error)
}

// RoleAssignmentClient enumerates the az operations the vault grant workflow performs.
type RoleAssignmentClient interface {
	AssignRole(executionContext context.Context, assigneeObjectIdentifier string, roleName string, scope string) error
	ListSecretNames(executionContext context.Context, vaultName string, namePrefix string) ([]string, error)
}

// Dependencies enumerates external collaborators required for vault grants.
type Dependencies struct {
	Provisioner ServicePrincipalProvisioner
	RoleClient  RoleAssignmentClient
}

// Options configures a vault access provisioning operation.
//
// An empty SecretPrefix grants vault-wide access; a non-empty prefix grants
// access per matching secret and fails when nothing matches.
type Options struct {
	RepositoryName         string
	TenantIdentifier       string
	SubscriptionIdentifier string
	ResourceGroup          string
	VaultName              string
	SecretPrefix           string
}

// Result captures the observable outcomes of a vault access provisioning operation.
type Result struct {
	ServicePrincipalName string
	Reused               bool
	Credentials          azure.Credentials
	AssignedScopes       []string
	MatchedSecretNames   []string
}

// Service grants a repository service principal access to Key Vault secrets.
type Service struct {
	provisioner ServicePrincipalProvisioner
	roleClient  RoleAssignmentClient
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Provisioner == nil {
		return nil, ErrProvisionerNotConfigured
	}
	if dependencies.RoleClient == nil {
		return nil, ErrRoleClientNotConfigured
	}
	return &Service{provisioner: dependencies.Provisioner, roleClient: dependencies.RoleClient}, nil
}

// Provision reuses or creates the repository service principal and assigns vault access.
func (service *Service) Provision(executionContext context.Context, options Options) (Result, error) {
	trimmedRepositoryName := strings.TrimSpace(options.RepositoryName)
	if len(trimmedRepositoryName) == 0 {
		return Result{}, ErrRepositoryNameRequired
	}
	trimmedSubscription := strings.TrimSpace(options.SubscriptionIdentifier)
	if len(trimmedSubscription) == 0 {
		return Result{}, ErrSubscriptionRequired
	}
	trimmedResourceGroup := strings.TrimSpace(options.ResourceGroup)
	if len(trimmedResourceGroup) == 0 {
		return Result{}, ErrResourceGroupRequired
	}
	trimmedVaultName := strings.TrimSpace(options.VaultName)
	if len(trimmedVaultName) == 0 {
		return Result{}, ErrVaultNameRequired
	}

	servicePrincipalName := trimmedRepositoryName + servicePrincipalNameSuffixConstant
	provisionedServicePrincipal, provisioningError := service.provisioner.EnsureServicePrincipal(executionContext, servicePrincipalName)
	if provisioningError != nil {
		return Result{}, fmt.Errorf(provisioningFailureTemplateConstant, servicePrincipalName, provisioningError)
	}

	provisionResult := Result{
		ServicePrincipalName: servicePrincipalName,
		Reused:               provisionedServicePrincipal.Reused,
		Credentials: azure.Credentials{
			ClientIdentifier:       provisionedServicePrincipal.ClientIdentifier,
			ClientSecret:           provisionedServicePrincipal.ClientSecret,
			TenantIdentifier:       resolveTenantIdentifier(options.TenantIdentifier, provisionedServicePrincipal.TenantIdentifier),
			SubscriptionIdentifier: trimmedSubscription,
		},
	}

	trimmedSecretPrefix := strings.TrimSpace(options.SecretPrefix)
	if len(trimmedSecretPrefix) > 0 {
		matchedSecretNames, listError := service.roleClient.ListSecretNames(executionContext, trimmedVaultName, trimmedSecretPrefix)
		if listError != nil {
			return Result{}, fmt.Errorf(secretListFailureTemplateConstant, listError)
		}
		if len(matchedSecretNames) == 0 {
			return Result{}, fmt.Errorf(noMatchingSecretsTemplateConstant+": %w", trimmedVaultName, trimmedSecretPrefix, ErrNoMatchingSecrets)
		}

		provisionResult.MatchedSecretNames = matchedSecretNames
		for _, secretName := range matchedSecretNames {
			secretScope := fmt.Sprintf(secretScopeTemplateConstant, trimmedSubscription, trimmedResourceGroup, trimmedVaultName, secretName)
			if assignmentError := service.roleClient.AssignRole(executionContext, provisionedServicePrincipal.ObjectIdentifier, secretsUserRoleNameConstant, secretScope); assignmentError != nil {
				return Result{}, fmt.Errorf(roleAssignmentFailureTemplateConstant, secretsUserRoleNameConstant, secretScope, assignmentError)
			}
			provisionResult.AssignedScopes = append(provisionResult.AssignedScopes, secretScope)
		}
		return provisionResult, nil
	}

	vaultScope := fmt.Sprintf(vaultScopeTemplateConstant, trimmedSubscription, trimmedResourceGroup, trimmedVaultName)
	if assignmentError := service.roleClient.AssignRole(executionContext, provisionedServicePrincipal.ObjectIdentifier, secretsUserRoleNameConstant, vaultScope); assignmentError != nil {
		return Result{}, fmt.Errorf(roleAssignmentFailureTemplateConstant, secretsUserRoleNameConstant, vaultScope, assignmentError)
	}
	provisionResult.AssignedScopes = append(provisionResult.AssignedScopes, vaultScope)

	return provisionResult, nil
}

func resolveTenantIdentifier(requestedTenantIdentifier string, provisionedTenantIdentifier string) string {
	trimmedRequestedTenantIdentifier := strings.TrimSpace(requestedTenantIdentifier)
	if len(trimmedRequestedTenantIdentifier) > 0 {
		return trimmedRequestedTenantIdentifier
	}
	return provisionedTenantIdentifier
}
