package entity

import "image/color"

// CaptchaState is the plaintext side of a challenge. Only its encrypted
// answer ever leaves the process.
type CaptchaState struct {
	Answer     string
	Alphabet   string
	Length     int
	Style      CaptchaStyle
	Difficulty Difficulty
	BackColor  color.NRGBA
}

type ChallengeRequest struct {
	Alphabet           string `json:"alphabet"`
	Length             int    `json:"length"`
	Style              string `json:"style"`
	Difficulty         string `json:"difficulty"`
	BackColor          string `json:"back_color"`
	TextColor          string `json:"text_color"`
	Font               string `json:"font"`
	Width              int    `json:"width"`
	Height             int    `json:"height"`
	ClientCacheMinutes int    `json:"client_cache_minutes"`
	ServerCacheMinutes int    `json:"server_cache_minutes"`
}

type Challenge struct {
	Token string `json:"token"`
	Src   string `json:"src"`
}

type VerifyRequest struct {
	Token         string `json:"token" binding:"required"`
	Answer        string `json:"answer"`
	CaseSensitive bool   `json:"case_sensitive"`
}

type VerifyResponse struct {
	Valid bool `json:"valid"`
}
