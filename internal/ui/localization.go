package ui

import (
	"fmt"
	"os"
	"strings"
)

// Localization manages console text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
	getenv          func(string) string
}

// Text keys for localization
const (
	KeyStart        = "start"
	KeyURL          = "url"
	KeySaveIn       = "save_in"
	KeyAudioOnly    = "audio_only"
	KeyQuality      = "quality"
	KeyMaxRetries   = "max_retries"
	KeyRetryError   = "retry_error"
	KeyRetryWait    = "retry_wait"
	KeySuccess      = "success"
	KeySaved        = "saved"
	KeyFailed       = "failed"
	KeyInvalidURL   = "invalid_url"
	KeyInvalidInput = "invalid_input"
	KeyFilesystem   = "filesystem"
	KeyInterrupted  = "interrupted"
	KeyError        = "error"
	KeyProgress     = "progress"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: LanguageEnglish,
		texts:           make(map[string]map[string]string),
		getenv:          os.Getenv,
	}

	l.initializeTexts()
	return l
}

// SetEnvLookup replaces the environment lookup used to resolve the system language
func (l *Localization) SetEnvLookup(getenv func(string) string) {
	if getenv != nil {
		l.getenv = getenv
	}
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(lang string) {
	if lang == LanguageSystem {
		lang = l.systemLanguage()
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// systemLanguage derives a language code from the POSIX locale variables
func (l *Localization) systemLanguage() string {
	for _, key := range LocaleEnvVars {
		v := strings.TrimSpace(l.getenv(key))
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		code := strings.ToLower(v)
		if i := strings.IndexAny(code, "_.@-"); i >= 0 {
			code = code[:i]
		}
		return code
	}
	return LanguageEnglish
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts[LanguageEnglish]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Final fallback - return key itself
	return key
}

// Sprintf formats the localized text for key with args
func (l *Localization) Sprintf(key string, args ...any) string {
	return fmt.Sprintf(l.GetText(key), args...)
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		LanguageEnglish: "English",
		LanguageRussian: "Русский",
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	// English texts
	l.texts[LanguageEnglish] = map[string]string{
		KeyStart:        "Start downloading...",
		KeyURL:          "URL: %s",
		KeySaveIn:       "Save in: %s",
		KeyAudioOnly:    "Only audio (%s)",
		KeyQuality:      "Quality: %s",
		KeyMaxRetries:   "Max retries: %d",
		KeyRetryError:   "Download error (attempt %d/%d): %s",
		KeyRetryWait:    "Retrying in %s...",
		KeySuccess:      "Successfully downloaded!",
		KeySaved:        "Saved: %s",
		KeyFailed:       "Failed to download video after %d retries: %s",
		KeyInvalidURL:   "Invalid URL. Must start with http:// or https://",
		KeyInvalidInput: "Invalid input: %s",
		KeyFilesystem:   "Cannot prepare save path: %s",
		KeyInterrupted:  "Download interrupted",
		KeyError:        "Error: %s",
		KeyProgress:     "Progress: %s | Speed: %s | ETA: %s",
	}

	// Russian texts
	l.texts[LanguageRussian] = map[string]string{
		KeyStart:        "Начинаю загрузку...",
		KeyURL:          "URL: %s",
		KeySaveIn:       "Сохранить в: %s",
		KeyAudioOnly:    "Только аудио (%s)",
		KeyQuality:      "Качество: %s",
		KeyMaxRetries:   "Максимум попыток: %d",
		KeyRetryError:   "Ошибка загрузки (попытка %d/%d): %s",
		KeyRetryWait:    "Повтор через %s...",
		KeySuccess:      "Загрузка завершена!",
		KeySaved:        "Сохранено: %s",
		KeyFailed:       "Не удалось скачать видео после %d попыток: %s",
		KeyInvalidURL:   "Неверный URL. Он должен начинаться с http:// или https://",
		KeyInvalidInput: "Неверные параметры: %s",
		KeyFilesystem:   "Не удалось подготовить каталог: %s",
		KeyInterrupted:  "Загрузка прервана",
		KeyError:        "Ошибка: %s",
		KeyProgress:     "Прогресс: %s | Скорость: %s | Осталось: %s",
	}
}
