// Package theme maps child avatars to display palettes. Activating a
// profile returns a Theme value in the API response; applying it to any
// particular UI is the client's business, never a shared mutation here.
package theme

import "sort"

type Theme struct {
	Name       string `json:"name"`
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Background string `json:"background"`
	Surface    string `json:"surface"`
	Text       string `json:"text"`
	Gradient   string `json:"gradient"`
	Shadow     string `json:"shadow"`
}

var pink = Theme{
	Name:       "Rosa Dolce",
	Primary:    "#FFB3D9",
	Secondary:  "#FFC9E1",
	Accent:     "#FF9BAA",
	Background: "#FFF5F8",
	Surface:    "#FFFFFF",
	Text:       "#8B5A7A",
	Gradient:   "linear-gradient(135deg, #FFB3D9 0%, #FFC9E1 50%, #FFE1EC 100%)",
	Shadow:     "rgba(255, 179, 217, 0.3)",
}

var blue = Theme{
	Name:       "Cielo Sereno",
	Primary:    "#A8D8F0",
	Secondary:  "#C2E5F7",
	Accent:     "#6C8CFF",
	Background: "#F0F8FF",
	Surface:    "#FFFFFF",
	Text:       "#4A6B8A",
	Gradient:   "linear-gradient(135deg, #A8D8F0 0%, #C2E5F7 50%, #E1F2FA 100%)",
	Shadow:     "rgba(168, 216, 240, 0.3)",
}

var green = Theme{
	Name:       "Prato Fresco",
	Primary:    "#B8E6B8",
	Secondary:  "#D1F2D1",
	Accent:     "#7ED8A4",
	Background: "#F0FFF0",
	Surface:    "#FFFFFF",
	Text:       "#5A8B5A",
	Gradient:   "linear-gradient(135deg, #B8E6B8 0%, #D1F2D1 50%, #E8F8E8 100%)",
	Shadow:     "rgba(184, 230, 184, 0.3)",
}

var yellow = Theme{
	Name:       "Sole Dolce",
	Primary:    "#FFE4B8",
	Secondary:  "#FFEFD1",
	Accent:     "#FFD47A",
	Background: "#FFFCF0",
	Surface:    "#FFFFFF",
	Text:       "#B8860B",
	Gradient:   "linear-gradient(135deg, #FFE4B8 0%, #FFEFD1 50%, #FFF8E8 100%)",
	Shadow:     "rgba(255, 228, 184, 0.3)",
}

// Default is the neutral palette used before any profile is active and for
// unknown avatars.
var Default = blue

var avatarThemes = map[string]Theme{
	"unicorn": pink,
	"cat":     pink,
	"dolphin": blue,
	"penguin": blue,
	"frog":    green,
	"turtle":  green,
	"lion":    yellow,
	"bee":     yellow,
}

// ForAvatar returns the palette bound to an avatar id, or Default when the
// avatar is unknown.
func ForAvatar(avatarID string) Theme {
	if t, ok := avatarThemes[avatarID]; ok {
		return t
	}
	return Default
}

// Avatars lists the known avatar ids.
func Avatars() []string {
	out := make([]string, 0, len(avatarThemes))
	for id := range avatarThemes {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
