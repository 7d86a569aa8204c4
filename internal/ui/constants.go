package ui

// Console-wide constants to avoid magic strings scattered across the package.

// Text fragments
const (
	PlaceholderNA  = "N/A"
	CarriageReturn = "\r"
	LineBreak      = "\n"
)

// Language codes
const (
	LanguageSystem  = "system"
	LanguageEnglish = "en"
	LanguageRussian = "ru"
)

// Environment variables consulted when resolving the system language, in order
var LocaleEnvVars = []string{"LC_ALL", "LC_MESSAGES", "LANG"}
