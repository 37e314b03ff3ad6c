package codec

import (
	"strconv"
	"strings"
)

const (
	KeyWidth              = "rsw"
	KeyHeight             = "rsh"
	KeyClientCacheMinutes = "ccd"
	KeyServerCacheMinutes = "scd"
	KeyRotateFlip         = "rft"
	KeyGrayscale          = "gys"
	KeySepia              = "sep"
	KeyTextValue          = "txv"
	KeyTextFont           = "txf"
	KeyTextColor          = "txc"
	KeyTextHAlign         = "txh"
	KeyTextVAlign         = "txw"
	KeyOutputFormat       = "imf"
	KeySource             = "src"
	KeyCreator            = "cty"
	KeySizeType           = "tcs"

	KeyGradientBorderColor      = "gbc"
	KeyGradientStartColor       = "gsc"
	KeyGradientEndColor         = "gec"
	KeyGradientCornerRadius     = "grc"
	KeyGradientBorderWidth      = "gbw"
	KeyGradientType             = "gty"
	KeyGradientInnerBorderColor = "gibc"
	KeyGradientInnerBorderWidth = "gibw"

	KeyCaptchaStyle      = "dst"
	KeyCaptchaDifficulty = "rlv"
	KeyCaptchaBackColor  = "cbk"

	// transformationPrefix followed by a zero-based index names an extension stage.
	transformationPrefix = "trt"
)

var reserved = map[string]bool{
	KeyWidth: true, KeyHeight: true, KeyClientCacheMinutes: true, KeyServerCacheMinutes: true,
	KeyRotateFlip: true, KeyGrayscale: true, KeySepia: true,
	KeyTextValue: true, KeyTextFont: true, KeyTextColor: true, KeyTextHAlign: true, KeyTextVAlign: true,
	KeyOutputFormat: true, KeySource: true, KeyCreator: true, KeySizeType: true,
	KeyGradientBorderColor: true, KeyGradientStartColor: true, KeyGradientEndColor: true,
	KeyGradientCornerRadius: true, KeyGradientBorderWidth: true, KeyGradientType: true,
	KeyGradientInnerBorderColor: true, KeyGradientInnerBorderWidth: true,
	KeyCaptchaStyle: true, KeyCaptchaDifficulty: true, KeyCaptchaBackColor: true,
}

// IsReserved reports whether key cannot be used as a stage parameter.
func IsReserved(key string) bool {
	return reserved[key] || strings.HasPrefix(strings.ToLower(key), transformationPrefix)
}

func transformationKey(i int) string {
	return transformationPrefix + strconv.Itoa(i)
}

// transformationIndex parses "trtN". ok is false for keys outside the
// namespace; err is set for keys inside it that are not canonical.
func transformationIndex(key string) (idx int, ok bool, err error) {
	if !strings.HasPrefix(strings.ToLower(key), transformationPrefix) {
		return 0, false, nil
	}
	digits := strings.TrimPrefix(key, transformationPrefix)
	if digits == key || digits == "" || (len(digits) > 1 && digits[0] == '0') {
		return 0, true, malformed(key, "bad transformation index")
	}
	idx, err = strconv.Atoi(digits)
	if err != nil || idx < 0 {
		return 0, true, malformed(key, "bad transformation index")
	}
	return idx, true, nil
}
