package mappers

import (
	"testing"

	"ctflab/dto"
)

func TestMapCreateReqToModel_NormalizedAliases(t *testing.T) {
	inactive := false
	req := dto.CreateChallengeReq{
		Title:              "  XOR Brute Force ",
		Category:           " Crypto",
		ScoreBaseCamel:     150,
		InteractiveIDCamel: "xorBrute",
		IsActiveCamel:      &inactive,
		Flag:               " CTF{keep spaces} ",
	}
	req.Normalize()
	ch := MapCreateReqToModel(req)

	if ch.Title != "XOR Brute Force" || ch.Category != "crypto" {
		t.Fatalf("unexpected cleaned fields: %q / %q", ch.Title, ch.Category)
	}
	if ch.ScoreBase != 150 || ch.Key() != "xorBrute" {
		t.Fatalf("aliases not applied: %d / %q", ch.ScoreBase, ch.Key())
	}
	if ch.IsActive {
		t.Fatalf("expected inactive challenge")
	}
	if ch.Flag != " CTF{keep spaces} " {
		t.Fatalf("flag must be stored verbatim, got %q", ch.Flag)
	}
	if string(ch.Difficulty) != "medium" || string(ch.Visibility) != "public" {
		t.Fatalf("defaults not applied: %q / %q", ch.Difficulty, ch.Visibility)
	}
}
