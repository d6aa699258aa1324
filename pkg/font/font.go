package font

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
)

type FontProvider interface {
	// Returns the font for the given language.
	GetFontByLanguage(language Language) *FontsByFace
}

type fontProvider struct {
	basePath string
	Japanese FontsByFace
	Korean   FontsByFace
	Chinese  FontsByFace
	English  FontsByFace
}

type FontFace string

const FontFaceSansSerif FontFace = "SansSerif"

type FontsByFace struct {
	SansSerif FontsByWeight
}

type FontsByWeight struct {
	Regular  *truetype.Font
	SemiBold *truetype.Font
	Bold     *truetype.Font
}

// New loads the SansSerif family of every supported language from basePath/<Language>/.
func New(basePath string) (FontProvider, error) {
	fp := &fontProvider{
		basePath: basePath,
	}

	var err error
	fp.Korean, err = fp.loadFontsByFace(LANGUAGE_KO_KR)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Korean fonts: %w", err)
	}

	fp.Japanese, err = fp.loadFontsByFace(LANGUAGE_JA_JP)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Japanese fonts: %w", err)
	}

	fp.Chinese, err = fp.loadFontsByFace(LANGUAGE_ZH_CN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Chinese fonts: %w", err)
	}

	fp.English, err = fp.loadFontsByFace(LANGUAGE_EN_US)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize English fonts: %w", err)
	}

	return fp, nil
}

// NewGoFonts returns a provider serving the embedded Go fonts for every language.
// They only cover Latin scripts, so it suits tests and Latin targets.
func NewGoFonts() (FontProvider, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	semiBold, err := truetype.Parse(gomedium.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse medium font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}
	face := FontsByFace{SansSerif: FontsByWeight{Regular: regular, SemiBold: semiBold, Bold: bold}}
	return &fontProvider{Japanese: face, Korean: face, Chinese: face, English: face}, nil
}

func (fp *fontProvider) loadFontsByFace(language Language) (FontsByFace, error) {
	sansSerif, err := fp.loadFontsByWeight(language, FontFaceSansSerif)
	if err != nil {
		return FontsByFace{}, err
	}

	return FontsByFace{
		SansSerif: *sansSerif,
	}, nil
}

// Every font file is renamed to the face name, e.g. Korean/SansSerif-Bold.ttf.
func (fp *fontProvider) loadFontsByWeight(language Language, face FontFace) (*FontsByWeight, error) {
	langDirectory := language.Directory()

	regular, err := parseFontFile(filepath.Join(fp.basePath, langDirectory, string(face)+"-Regular.ttf"))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s regular font: %w", face, err)
	}

	semiBold, err := parseFontFile(filepath.Join(fp.basePath, langDirectory, string(face)+"-SemiBold.ttf"))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s semiBold font: %w", face, err)
	}

	bold, err := parseFontFile(filepath.Join(fp.basePath, langDirectory, string(face)+"-Bold.ttf"))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s bold font: %w", face, err)
	}

	return &FontsByWeight{
		Regular:  regular,
		SemiBold: semiBold,
		Bold:     bold,
	}, nil
}

func (fp *fontProvider) GetFontByLanguage(language Language) *FontsByFace {
	switch language {
	case LANGUAGE_KO_KR:
		return &fp.Korean
	case LANGUAGE_JA_JP:
		return &fp.Japanese
	case LANGUAGE_ZH_CN:
		return &fp.Chinese
	// Unsupported languages get the Latin font.
	default:
		return &fp.English
	}
}

func parseFontFile(path string) (*truetype.Font, error) {
	fontBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return truetype.Parse(fontBytes)
}

type Language string

const (
	LANGUAGE_KO_KR Language = "KO-KR"
	LANGUAGE_JA_JP Language = "JA-JP"
	LANGUAGE_ZH_CN Language = "ZH-CN"
	LANGUAGE_EN_US Language = "EN-US"
)

// ParseLanguage accepts a locale code ("ko", "ja-JP") or an English language name ("Korean").
// Anything unrecognized is treated as English.
func ParseLanguage(value string) Language {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch {
	case strings.HasPrefix(normalized, "ko"):
		return LANGUAGE_KO_KR
	case strings.HasPrefix(normalized, "ja"):
		return LANGUAGE_JA_JP
	case strings.HasPrefix(normalized, "zh"), strings.HasPrefix(normalized, "chinese"):
		return LANGUAGE_ZH_CN
	}
	return LANGUAGE_EN_US
}

// Name is the English name used in translation prompts.
func (l Language) Name() string {
	switch l {
	case LANGUAGE_KO_KR:
		return "Korean"
	case LANGUAGE_JA_JP:
		return "Japanese"
	case LANGUAGE_ZH_CN:
		return "Chinese"
	default:
		return "English"
	}
}

func (l Language) Directory() string {
	return l.Name()
}
