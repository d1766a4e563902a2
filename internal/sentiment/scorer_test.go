package sentiment_test

import (
	"testing"

	"ratinglens/internal/sentiment"
)

func TestScore_Bounds(t *testing.T) {
	texts := []string{
		"absolutely amazing, best purchase ever, love love love it",
		"worst garbage I have ever bought, total scam, broke immediately",
		"it is a product",
		"",
	}
	for _, txt := range texts {
		s := sentiment.Score(txt)
		if s < -1 || s > 1 {
			t.Fatalf("score out of bounds for %q: %v", txt, s)
		}
	}
}

func TestScore_Polarity(t *testing.T) {
	pos := sentiment.Score("Great quality, works perfectly, highly recommend")
	neg := sentiment.Score("Terrible. It broke after two days and support was rude.")
	if pos <= 0 {
		t.Fatalf("expected positive score, got %v", pos)
	}
	if neg >= 0 {
		t.Fatalf("expected negative score, got %v", neg)
	}
	if pos <= neg {
		t.Fatalf("positive %v not above negative %v", pos, neg)
	}
}

func TestScore_NeutralOnEmptyOrNonText(t *testing.T) {
	for _, txt := range []string{"", "   ", "12345 !!! ???", "\x00\xff\xfe"} {
		if s := sentiment.Score(txt); s != 0 {
			t.Fatalf("expected neutral for %q, got %v", txt, s)
		}
	}
}

func TestScore_NegationFlips(t *testing.T) {
	plain := sentiment.Score("the battery is good")
	negated := sentiment.Score("the battery is not good")
	if plain <= 0 {
		t.Fatalf("expected positive baseline, got %v", plain)
	}
	if negated >= 0 {
		t.Fatalf("expected negation to flip polarity, got %v", negated)
	}
}

func TestScore_Deterministic(t *testing.T) {
	const txt = "good but the battery died after two days"
	first := sentiment.Score(txt)
	for i := 0; i < 100; i++ {
		if s := sentiment.Score(txt); s != first {
			t.Fatalf("non-deterministic score: %v vs %v", s, first)
		}
	}
}
