package types

// ProfileName identifies a registered output profile.
type ProfileName string

const (
	ProfileDefault ProfileName = "default"
	ProfileCompact ProfileName = "compact"
	ProfileHD      ProfileName = "hd"
	ProfileWebM    ProfileName = "webm"
)
