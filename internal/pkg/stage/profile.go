package stage

// Profile is the native plan of one endpoint: the default creator and the
// fixed order of built-in transformations run before any extension stage.
type Profile struct {
	Name    string
	Creator string
	Native  []string
	// SecretText marks profiles whose text value is a captcha token that
	// must be decrypted before rendering.
	SecretText bool
}

var (
	ImageProfile = Profile{
		Name:   "image",
		Native: []string{ResizeID, TextID, GrayscaleID, SepiaID, RotateFlipID},
	}
	ButtonProfile = Profile{
		Name:    "button",
		Creator: TextCanvasID,
		Native:  []string{ResizeID, GradientID, TextID, GrayscaleID, SepiaID, RotateFlipID},
	}
	CaptchaProfile = Profile{
		Name:       "captcha",
		Creator:    TextCanvasID,
		Native:     []string{ResizeID, CaptchaID, GrayscaleID, SepiaID, RotateFlipID},
		SecretText: true,
	}
)

var profiles = map[string]Profile{
	ImageProfile.Name:   ImageProfile,
	ButtonProfile.Name:  ButtonProfile,
	CaptchaProfile.Name: CaptchaProfile,
}

func LookupProfile(name string) (Profile, bool) {
	p, ok := profiles[name]
	return p, ok
}
