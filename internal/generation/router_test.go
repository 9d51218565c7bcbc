package generation

import "testing"

func TestChooseModelPrecedence(t *testing.T) {
	cases := []struct {
		name  string
		idea  string
		style string
		hint  string
		want  ModelKey
	}{
		{"hint wins over style and idea", "fun party flyer", "photographic", "sdxl", ModelSDXL},
		{"hint wins toward flux", "cute mascot", "cartoon", "flux", ModelFlux},
		{"unknown hint falls through to style", "product shot", "illustrated", "dall-e", ModelSDXL},
		{"stylized style", "a castle", "anime", "", ModelSDXL},
		{"photographic style", "a castle", "photographic", "", ModelFlux},
		{"futuristic style", "a castle", "futuristic", "", ModelFlux},
		{"lighthearted keyword in idea", "birthday sale banner for a bakery", "", "", ModelSDXL},
		{"promo keyword in idea", "weekend promo visual", "", "", ModelSDXL},
		{"plain idea defaults to flux", "portrait of an architect at dusk", "", "", ModelFlux},
		{"empty everything defaults to flux", "", "", "", ModelFlux},
	}
	for _, tc := range cases {
		if got := ChooseModel(tc.idea, tc.style, tc.hint); got != tc.want {
			t.Fatalf("%s: ChooseModel = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestChooseModelIsDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		if got := ChooseModel("fun sticker pack", "photo", ""); got != ModelFlux {
			t.Fatalf("style should outrank idea keywords, got %q", got)
		}
	}
}
