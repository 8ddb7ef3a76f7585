/**
 * @description
 * This file defines the core domain models for accounts and plan entitlements.
 * These structs represent the main entities and data transfer objects (DTOs)
 * used throughout the service's business logic, database interactions, and API layers.
 *
 * @notes
 * - Usage counters live on the account row itself and only ever move upward,
 *   exactly one step per successfully claimed generation.
 * - Pro entitlement is recomputed from the subscription row on every check;
 *   it is never cached on the account.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Capability identifies a metered generation feature.
type Capability string

const (
	CapabilityLogo   Capability = "logo"
	CapabilityDesign Capability = "design"
)

// FreeQuotaPerCapability is the number of free-tier uses allowed per capability.
const FreeQuotaPerCapability = 1

// Account represents a registered user of the brand builder.
// This struct maps directly to the `accounts` table in the database.
type Account struct {
	ID                    uuid.UUID `json:"id"`
	Email                 string    `json:"email"`
	AuthSubject           string    `json:"-"`
	IsAdmin               bool      `json:"is_admin"`
	LogoGenerationsUsed   int       `json:"logo_generations_used"`
	DesignGenerationsUsed int       `json:"design_generations_used"`
	GenerationsUsed       int       `json:"generations_used"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// UsageLimits is the entitlement snapshot returned by the gate query surface.
type UsageLimits struct {
	Plan                  Plan `json:"plan"`
	IsPro                 bool `json:"is_pro"`
	CanGenerateLogo       bool `json:"can_generate_logo"`
	CanGenerateDesign     bool `json:"can_generate_design"`
	LogoGenerationsUsed   int  `json:"logo_generations_used"`
	DesignGenerationsUsed int  `json:"design_generations_used"`
}

// CanUse reports whether the snapshot permits another use of the capability.
func (l UsageLimits) CanUse(capability Capability) bool {
	switch capability {
	case CapabilityLogo:
		return l.CanGenerateLogo
	case CapabilityDesign:
		return l.CanGenerateDesign
	default:
		return false
	}
}
