package apps

import "time"

// Platform identifies the client platform a tenant app targets.
const (
	PlatformAndroid = "ANDROID"
	PlatformIOS     = "IOS"
)

// App is a tenant integrating the service. The id is chosen by the tenant
// and immutable; the secret is issued once and only ever compared, never
// redisplayed through listing.
type App struct {
	ID     string
	Secret string
	// Platform is an optional client platform marker.
	Platform string
	// ServerKey is the optional push-delivery credential for the tenant's
	// notification project.
	ServerKey string
	CreatedAt time.Time
}
