package i18n

import (
	"fmt"
	"os"
	"strings"

	"persona-board/internal/model"

	"golang.org/x/text/language"
)

// Strings holds every user-facing text of the widget for one language.
type Strings struct {
	DefaultTitle string

	Uncategorized string
	NewCategory   string
	EditCategory  string

	NewProfile string
	NewTask    string

	FieldQuote       string
	FieldContext     string
	FieldDescription string
	FieldTasks       string

	DeleteProfileTitle  string
	DeleteCategoryTitle string

	ProfileDeleted       string
	CategoryUpdatedShort string
	SettingsSaved        string
	ImportSuccess        string
	ImportError          string
	ExportStarted        string
	ExportCopied         string
	ExportError          string
	ExportManualHint     string

	EmptyTitle      string
	EmptySubtitle   string
	AddFirstProfile string
	Tip             string
	DetailEmpty     string

	profileCount      func(n int) string
	categoryCount     func(n int) string
	categoryAdded     func(name string) string
	categoryUpdated   func(name string) string
	categoryDeleted   func(name string) string
	categoryDeletedN  func(name string, n int) string
	deleteProfileMsg  func(name string) string
	deleteCategoryMsg func(name string, n int) string
}

func (s Strings) ProfileCount(n int) string  { return s.profileCount(n) }
func (s Strings) CategoryCount(n int) string { return s.categoryCount(n) }
func (s Strings) CategoryAdded(name string) string {
	return s.categoryAdded(name)
}
func (s Strings) CategoryUpdated(name string) string {
	return s.categoryUpdated(name)
}

// CategoryDeleted returns the notification for a category deletion that moved
// n profiles to uncategorized.
func (s Strings) CategoryDeleted(name string, n int) string {
	if n > 0 {
		return s.categoryDeletedN(name, n)
	}
	return s.categoryDeleted(name)
}
func (s Strings) DeleteProfileMessage(name string) string { return s.deleteProfileMsg(name) }
func (s Strings) DeleteCategoryMessage(name string, n int) string {
	return s.deleteCategoryMsg(name, n)
}

// BuiltInLabel returns the localized label of a built-in field.
func (s Strings) BuiltInLabel(key model.BuiltInKey) string {
	switch key {
	case model.BuiltInQuote:
		return s.FieldQuote
	case model.BuiltInContext:
		return s.FieldContext
	case model.BuiltInDescription:
		return s.FieldDescription
	case model.BuiltInTasks:
		return s.FieldTasks
	}
	return string(key)
}

// FieldLabel resolves the display label of a field: built-ins through
// localization, custom fields verbatim.
func (s Strings) FieldLabel(f model.FieldConfig) string {
	if f.IsBuiltIn && f.BuiltInKey != "" {
		return s.BuiltInLabel(f.BuiltInKey)
	}
	return f.Label
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

var english = Strings{
	DefaultTitle:         "User Profiles",
	Uncategorized:        "Uncategorized",
	NewCategory:          "New category",
	EditCategory:         "Edit category",
	NewProfile:           "New profile",
	NewTask:              "New task",
	FieldQuote:           "Quote",
	FieldContext:         "Context",
	FieldDescription:     "Description",
	FieldTasks:           "Tasks",
	DeleteProfileTitle:   "Delete profile",
	DeleteCategoryTitle:  "Delete category",
	ProfileDeleted:       "Profile deleted",
	CategoryUpdatedShort: "Category updated",
	SettingsSaved:        "Settings saved",
	ImportSuccess:        "Data imported successfully",
	ImportError:          "Import failed: invalid JSON format",
	ExportStarted:        "Export started...",
	ExportCopied:         "Data copied to clipboard",
	ExportError:          "Failed to copy to clipboard",
	ExportManualHint:     "Copy the JSON data below manually:",
	EmptyTitle:           "All your audience insights in one overview",
	EmptySubtitle:        "Create profiles, group them into categories, and share them with your team.",
	AddFirstProfile:      "+ Add first profile",
	Tip:                  "Tip: customize profile fields via Widget settings in the menu.",
	DetailEmpty:          "Select a profile to view details",

	profileCount:  func(n int) string { return fmt.Sprintf("%d %s", n, plural(n, "profile", "profiles")) },
	categoryCount: func(n int) string { return fmt.Sprintf("%d %s", n, plural(n, "category", "categories")) },
	categoryAdded: func(name string) string { return fmt.Sprintf("Category %q added", name) },
	categoryUpdated: func(name string) string {
		return fmt.Sprintf("Category %q updated", name)
	},
	categoryDeleted: func(name string) string { return fmt.Sprintf("Category %q deleted", name) },
	categoryDeletedN: func(name string, n int) string {
		return fmt.Sprintf("Category %q deleted. %d %s moved.", name, n, plural(n, "profile", "profiles"))
	},
	deleteProfileMsg: func(name string) string {
		return fmt.Sprintf("Are you sure you want to delete %q?", name)
	},
	deleteCategoryMsg: func(name string, n int) string {
		if n == 0 {
			return fmt.Sprintf("Are you sure you want to delete category %q?", name)
		}
		return fmt.Sprintf("Are you sure you want to delete category %q? %d %s will be moved to %q.",
			name, n, plural(n, "profile", "profiles"), "Uncategorized")
	},
}

var dutch = Strings{
	DefaultTitle:         "Gebruikersprofielen",
	Uncategorized:        "Ongecategoriseerd",
	NewCategory:          "Nieuwe categorie",
	EditCategory:         "Categorie bewerken",
	NewProfile:           "Nieuw profiel",
	NewTask:              "Nieuwe taak",
	FieldQuote:           "Quote",
	FieldContext:         "Context",
	FieldDescription:     "Omschrijving",
	FieldTasks:           "Taken",
	DeleteProfileTitle:   "Profiel verwijderen",
	DeleteCategoryTitle:  "Categorie verwijderen",
	ProfileDeleted:       "Profiel verwijderd",
	CategoryUpdatedShort: "Categorie bijgewerkt",
	SettingsSaved:        "Instellingen opgeslagen",
	ImportSuccess:        "Data succesvol geïmporteerd",
	ImportError:          "Fout bij importeren: ongeldig JSON formaat",
	ExportStarted:        "Export gestart...",
	ExportCopied:         "Data gekopieerd naar klembord",
	ExportError:          "Fout bij kopiëren naar klembord",
	ExportManualHint:     "Kopieer de JSON data hieronder handmatig:",
	EmptyTitle:           "Al je doelgroepinformatie in één overzicht",
	EmptySubtitle:        "Maak profielen, groepeer ze in categorieën, en deel ze met je team.",
	AddFirstProfile:      "+ Eerste profiel toevoegen",
	Tip:                  "Tip: Pas profielvelden aan via Widget instellingen in het menu.",
	DetailEmpty:          "Selecteer een profiel om details te bekijken",

	profileCount:  func(n int) string { return fmt.Sprintf("%d profiel%s", n, plural(n, "", "en")) },
	categoryCount: func(n int) string { return fmt.Sprintf("%d categorie%s", n, plural(n, "", "ën")) },
	categoryAdded: func(name string) string { return fmt.Sprintf("Categorie %q toegevoegd", name) },
	categoryUpdated: func(name string) string {
		return fmt.Sprintf("Categorie %q bijgewerkt", name)
	},
	categoryDeleted: func(name string) string { return fmt.Sprintf("Categorie %q verwijderd", name) },
	categoryDeletedN: func(name string, n int) string {
		return fmt.Sprintf("Categorie %q verwijderd. %d profiel%s verplaatst.", name, n, plural(n, "", "en"))
	},
	deleteProfileMsg: func(name string) string {
		return fmt.Sprintf("Weet je zeker dat je %q wilt verwijderen?", name)
	},
	deleteCategoryMsg: func(name string, n int) string {
		if n == 0 {
			return fmt.Sprintf("Weet je zeker dat je categorie %q wilt verwijderen?", name)
		}
		return fmt.Sprintf("Weet je zeker dat je categorie %q wilt verwijderen? %d profiel%s %s automatisch verplaatst naar %q.",
			name, n, plural(n, "", "en"), plural(n, "wordt", "worden"), "Ongecategoriseerd")
	},
}

// For returns the string table for lang, defaulting to English.
func For(lang model.Language) Strings {
	if lang == model.LanguageNL {
		return dutch
	}
	return english
}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Dutch})

// Match maps a BCP 47 tag or POSIX locale ("nl_NL.UTF-8") onto a supported
// widget language. Unparseable input yields English.
func Match(s string) model.Language {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "_", "-")
	if s == "" || strings.EqualFold(s, "C") || strings.EqualFold(s, "POSIX") {
		return model.LanguageEN
	}
	tag, err := language.Parse(s)
	if err != nil {
		return model.LanguageEN
	}
	_, idx, _ := matcher.Match(tag)
	if idx == 1 {
		return model.LanguageNL
	}
	return model.LanguageEN
}

// FromEnv resolves the language from LC_ALL, LC_MESSAGES or LANG.
func FromEnv() model.Language {
	for _, k := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return Match(v)
		}
	}
	return model.LanguageEN
}
