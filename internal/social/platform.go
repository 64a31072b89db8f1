// Package social defines the posting platforms shared by the generator and
// the publisher.
package social

// Platform identifies a posting target.
type Platform string

const (
	// PlatformMicroblog is the short-form platform with a hard 280-char limit.
	PlatformMicroblog Platform = "microblog"
	// PlatformProfessionalNetwork is the long-form professional platform.
	PlatformProfessionalNetwork Platform = "professional-network"
)

const (
	// MicroblogMaxLength is the hard character budget on the microblog,
	// enforced both locally and by the provider.
	MicroblogMaxLength = 280
	// ProfessionalNetworkMaxLength is the professional network's budget.
	ProfessionalNetworkMaxLength = 3000
)

// IsValid reports whether p names a supported platform.
func (p Platform) IsValid() bool {
	return p == PlatformMicroblog || p == PlatformProfessionalNetwork
}

// MaxLength returns the platform's character budget.
func (p Platform) MaxLength() int {
	if p == PlatformMicroblog {
		return MicroblogMaxLength
	}
	return ProfessionalNetworkMaxLength
}
