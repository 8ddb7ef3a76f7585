/**
 * @description
 * DTOs for the metered AI generation endpoints: logo name suggestions and
 * design image generation.
 */

package domain

// GenerateLogoNamesRequest is the DTO for logo name suggestion requests.
type GenerateLogoNamesRequest struct {
	BusinessName string `json:"business_name"`
	Industry     string `json:"industry"`
	Count        int    `json:"count,omitempty"`
}

// GenerateLogoNamesResponse carries the suggested names plus the post-claim limits.
type GenerateLogoNamesResponse struct {
	Names  []string    `json:"names"`
	Limits UsageLimits `json:"limits"`
}

// GenerateDesignRequest is the DTO for design image generation requests.
type GenerateDesignRequest struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style,omitempty"`
}

// GenerateDesignResponse carries the generated image reference plus limits.
type GenerateDesignResponse struct {
	ImageURL string      `json:"image_url"`
	Limits   UsageLimits `json:"limits"`
}

// QuotaExceededResponse is returned when the entitlement gate denies a generation.
type QuotaExceededResponse struct {
	Error           string      `json:"error"`
	UpgradeRequired bool        `json:"upgrade_required"`
	Limits          UsageLimits `json:"limits"`
}
