// file: services/aliases.go
package services

import (
	"regexp"
	"strconv"

	"ctflab/models"

	"github.com/gosimple/slug"
)

// hintPrefixes 前端提示元素前缀 -> 规范 key（interactive_id）
var hintPrefixes = map[string]string{
	"sql":        "sqlInjection",
	"cmd":        "cmdInjection",
	"xss":        "xssStealer",
	"jwt":        "jwtHack",
	"multi":      "multiCipher",
	"xor":        "xorBrute",
	"rsa":        "rsaAttack",
	"custom":     "customCipher",
	"birthday":   "birthdayExif",
	"geo":        "geoLocation",
	"stego":      "stegoFlag",
	"disk":       "diskAnalysis",
	"packet":     "packetBasic",
	"dns":        "dnsTunnel",
	"arp":        "arpSpoof",
	"ssl":        "sslStrip",
	"asm":        "asmPassword",
	"crackme":    "crackme",
	"obfuscated": "obfuscated",
	"malware":    "malwareAnalysis",
	"apk":        "apkStrings",
	"root":       "rootBypass",
	"sslPin":     "sslPinning",
	"native":     "nativeLib",
}

// legacyTitles 规范 key -> 旧数据中的题目标题，interactive_id 未回填时使用
var legacyTitles = map[string]string{
	"sqlInjection":    "SQL Injection Login Bypass",
	"cmdInjection":    "Command Injection Shell",
	"xssStealer":      "XSS Cookie Stealer",
	"jwtHack":         "JWT Token Manipulation",
	"multiCipher":     "Multi-Layer Cipher",
	"xorBrute":        "XOR Brute Force",
	"rsaAttack":       "RSA Small Exponent Attack",
	"customCipher":    "Custom Cipher Breaking",
	"birthdayExif":    "Hidden Birthday Message",
	"geoLocation":     "Geolocation Mystery",
	"stegoFlag":       "Steganography Battlefield",
	"diskAnalysis":    "Disk Analysis",
	"packetBasic":     "Packet Sniffer Basic",
	"dnsTunnel":       "DNS Tunneling Extract",
	"arpSpoof":        "ARP Spoofing Attack",
	"sslStrip":        "SSL Strip Analysis",
	"asmPassword":     "Assembly Password Check",
	"crackme":         "Binary Crackme",
	"obfuscated":      "Obfuscated Code Analysis",
	"malwareAnalysis": "Malware Behavior Analysis",
	"apkStrings":      "APK String Analysis",
	"rootBypass":      "Root Detection Bypass",
	"sslPinning":      "SSL Pinning Challenge",
	"nativeLib":       "Native Library Reverse",
}

var hintElementPattern = regexp.MustCompile(`^(.+?)hint(\d+)$`)

// ResolveChallengeKey 把提示前缀或短 id 统一成规范 key
func ResolveChallengeKey(ref string) string {
	if key, ok := hintPrefixes[ref]; ok {
		return key
	}
	return ref
}

// ParseHintElement "xsshint1" -> ("xss", 1)
func ParseHintElement(elementID string) (alias string, ordinal int, ok bool) {
	m := hintElementPattern.FindStringSubmatch(elementID)
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], n, true
}

// FindChallenge 解析顺序：interactive_id -> 旧标题表 -> 标题 slug
func FindChallenge(challenges []models.Challenge, ref string) (*models.Challenge, bool) {
	if ref == "" {
		return nil, false
	}
	key := ResolveChallengeKey(ref)
	for i := range challenges {
		if challenges[i].Key() == key {
			return &challenges[i], true
		}
	}
	if title, ok := legacyTitles[key]; ok {
		for i := range challenges {
			if challenges[i].Title == title {
				return &challenges[i], true
			}
		}
	}
	refSlug := slug.Make(ref)
	for i := range challenges {
		if slug.Make(challenges[i].Title) == refSlug {
			return &challenges[i], true
		}
	}
	return nil, false
}
