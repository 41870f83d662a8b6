package config

const (
	CategoryInformation = "🕯️ Information"
	CategoryModeration  = "🔨 Moderation"
	CategoryRoles       = "🎭 Roles"
	CategoryChat        = "💬 Chat"
	CategoryStats       = "📊 Stats"
	CategoryVoice       = "🎵 Voice"
	CategoryMarket      = "📈 Market"
	CategoryCleanup     = "🧹 Cleanup"
	CategoryMaintenance = "🛠️ Maintenance"
)

// CategoryWeights orders categories in help output; lower comes first.
var CategoryWeights = map[string]int{
	CategoryInformation: 0,
	CategoryModeration:  10,
	CategoryRoles:       20,
	CategoryChat:        30,
	CategoryStats:       35,
	CategoryVoice:       39,
	CategoryMarket:      40,
	CategoryCleanup:     45,
	CategoryMaintenance: 60,
}
