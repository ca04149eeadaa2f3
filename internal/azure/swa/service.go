package swa

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arktecquant/devkit/internal/azure"
)

const (
	servicePrincipalNameSuffixConstant    = "-sp"
	contributorRoleNameConstant           = "Contributor"
	resourceGroupScopeTemplateConstant    = "/subscriptions/%s/resourceGroups/%s"
	baseNameRequiredMessageConstant       = "service principal base name must be provided"
	subscriptionRequiredMessageConstant   = "subscription identifier must be provided"
	resourceGroupRequiredMessageConstant  = "resource group must be provided"
	webAppNameRequiredMessageConstant     = "static web app name must be provided"
	locationRequiredMessageConstant       = "static web app location must be provided"
	provisionerMissingMessageConstant     = "service principal provisioner not configured"
	resourceClientMissingMessageConstant  = "resource client not configured"
	provisioningFailureTemplateConstant   = "failed to provision service principal %s: %w"
	roleAssignmentFailureTemplateConstant = "failed to assign %q at %s: %w"
	webAppCreationFailureTemplateConstant = "failed to create static web app %s: %w"
)

// ErrBaseNameRequired indicates the service principal base name option was empty.
var ErrBaseNameRequired = errors.New(baseNameRequiredMessageConstant)

// ErrSubscriptionRequired indicates the subscription identifier option was empty.
var ErrSubscriptionRequired = errors.New(subscriptionRequiredMessageConstant)

// ErrResourceGroupRequired indicates the resource group option was empty.
var ErrResourceGroupRequired = errors.New(resourceGroupRequiredMessageConstant)

// ErrWebAppNameRequired indicates a web app creation was requested without a name.
var ErrWebAppNameRequired = errors.New(webAppNameRequiredMessageConstant)

// ErrLocationRequired indicates a web app creation was requested without a location.
var ErrLocationRequired = errors.New(locationRequiredMessageConstant)

// ErrProvisionerNotConfigured indicates the provisioner dependency was missing.
var ErrProvisionerNotConfigured = errors.New(provisionerMissingMessageConstant)

// ErrResourceClientNotConfigured indicates the resource client dependency was missing.
var ErrResourceClientNotConfigured = errors.New(resourceClientMissingMessageConstant)

// ServicePrincipalProvisioner reuses or creates service principals by display name.
type ServicePrincipalProvisioner interface {
	EnsureServicePrincipal(executionContext context.Context, displayName string) (azure.ProvisionedServicePrincipal, error)
}

// ResourceClient enumerates the az operations the deployer workflow performs.
type ResourceClient interface {
	AssignRole(executionContext context.Context, assigneeObjectIdentifier string, roleName string, scope string) error
	CreateStaticWebApp(executionContext context.Context, webAppName string, resourceGroup string, location string) error
}

// Dependencies enumerates external collaborators required for deployer provisioning.
type Dependencies struct {
	Provisioner    ServicePrincipalProvisioner
	ResourceClient ResourceClient
}

// Options configures a deployer provisioning operation.
type Options struct {
	BaseName               string
	TenantIdentifier       string
	SubscriptionIdentifier string
	ResourceGroup          string
	CreateWebApp           bool
	WebAppName             string
	WebAppLocation         string
}

// Result captures the observable outcomes of a deployer provisioning operation.
type Result struct {
	ServicePrincipalName string
	Reused               bool
	Credentials          azure.Credentials
	AssignedScope        string
	WebAppCreated        bool
	WebAppName           string
	WebAppResourceGroup  string
	WebAppLocation       string
}

// Service provisions a Contributor-scoped deployer service principal.
type Service struct {
	provisioner    ServicePrincipalProvisioner
	resourceClient ResourceClient
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Provisioner == nil {
		return nil, ErrProvisionerNotConfigured
	}
	if dependencies.ResourceClient == nil {
		return nil, ErrResourceClientNotConfigured
	}
	return &Service{provisioner: dependencies.Provisioner, resourceClient: dependencies.ResourceClient}, nil
}

// Provision reuses or creates the deployer service principal, grants Contributor, and optionally creates the web app.
func (service *Service) Provision(executionContext context.Context, options Options) (Result, error) {
	trimmedBaseName := strings.TrimSpace(options.BaseName)
	if len(trimmedBaseName) == 0 {
		return Result{}, ErrBaseNameRequired
	}
	trimmedSubscription := strings.TrimSpace(options.SubscriptionIdentifier)
	if len(trimmedSubscription) == 0 {
		return Result{}, ErrSubscriptionRequired
	}
	trimmedResourceGroup := strings.TrimSpace(options.ResourceGroup)
	if len(trimmedResourceGroup) == 0 {
		return Result{}, ErrResourceGroupRequired
	}

	trimmedWebAppName := strings.TrimSpace(options.WebAppName)
	trimmedWebAppLocation := strings.TrimSpace(options.WebAppLocation)
	if options.CreateWebApp {
		if len(trimmedWebAppName) == 0 {
			return Result{}, ErrWebAppNameRequired
		}
		if len(trimmedWebAppLocation) == 0 {
			return Result{}, ErrLocationRequired
		}
	}

	servicePrincipalName := trimmedBaseName + servicePrincipalNameSuffixConstant
	provisionedServicePrincipal, provisioningError := service.provisioner.EnsureServicePrincipal(executionContext, servicePrincipalName)
	if provisioningError != nil {
		return Result{}, fmt.Errorf(provisioningFailureTemplateConstant, servicePrincipalName, provisioningError)
	}

	resourceGroupScope := fmt.Sprintf(resourceGroupScopeTemplateConstant, trimmedSubscription, trimmedResourceGroup)
	if assignmentError := service.resourceClient.AssignRole(executionContext, provisionedServicePrincipal.ObjectIdentifier, contributorRoleNameConstant, resourceGroupScope); assignmentError != nil {
		return Result{}, fmt.Errorf(roleAssignmentFailureTemplateConstant, contributorRoleNameConstant, resourceGroupScope, assignmentError)
	}

	provisionResult := Result{
		ServicePrincipalName: servicePrincipalName,
		Reused:               provisionedServicePrincipal.Reused,
		AssignedScope:        resourceGroupScope,
		Credentials: azure.Credentials{
			ClientIdentifier:       provisionedServicePrincipal.ClientIdentifier,
			ClientSecret:           provisionedServicePrincipal.ClientSecret,
			TenantIdentifier:       resolveTenantIdentifier(options.TenantIdentifier, provisionedServicePrincipal.TenantIdentifier),
			SubscriptionIdentifier: trimmedSubscription,
		},
	}

	if options.CreateWebApp {
		if creationError := service.resourceClient.CreateStaticWebApp(executionContext, trimmedWebAppName, trimmedResourceGroup, trimmedWebAppLocation); creationError != nil {
			return Result{}, fmt.Errorf(webAppCreationFailureTemplateConstant, trimmedWebAppName, creationError)
		}
		provisionResult.WebAppCreated = true
		provisionResult.WebAppName = trimmedWebAppName
		provisionResult.WebAppResourceGroup = trimmedResourceGroup
		provisionResult.WebAppLocation = trimmedWebAppLocation
	}

	return provisionResult, nil
}

func resolveTenantIdentifier(requestedTenantIdentifier string, provisionedTenantIdentifier string) string {
	trimmedRequestedTenantIdentifier := strings.TrimSpace(requestedTenantIdentifier)
	if len(trimmedRequestedTenantIdentifier) > 0 {
		return trimmedRequestedTenantIdentifier
	}
	return provisionedTenantIdentifier
}
