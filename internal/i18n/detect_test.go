package i18n

import (
	"strings"
	"testing"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "english",
			text: "add a task to buy milk",
			want: LocaleEnglish,
		},
		{
			name: "empty defaults to english",
			text: "",
			want: LocaleEnglish,
		},
		{
			name: "whitespace defaults to english",
			text: "   ",
			want: LocaleEnglish,
		},
		{
			name: "chinese",
			text: "添加一个买牛奶的任务",
			want: LocaleChinese,
		},
		{
			name: "mostly latin with one cjk char stays english",
			text: "please add task 好 for tomorrow morning ok",
			want: LocaleEnglish,
		},
		{
			name: "arabic",
			text: "أضف مهمة شراء الحليب",
			want: LocaleArabic,
		},
		{
			name: "urdu",
			text: "دودھ خریدنے کا کام شامل کریں",
			want: LocaleUrdu,
		},
		{
			name: "turkish",
			text: "süt almak için görev ekle",
			want: LocaleTurkish,
		},
		{
			name: "plain ascii turkish-free stays english",
			text: "show my tasks",
			want: LocaleEnglish,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.text); got != tt.want {
				t.Errorf("Detect(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"en", LocaleEnglish},
		{"en-US", LocaleEnglish},
		{"zh", LocaleChinese},
		{"zh-TW", LocaleChinese},
		{"tr-TR", LocaleTurkish},
		{"ur", LocaleUrdu},
		{"ar-EG", LocaleArabic},
		{"", LocaleEnglish},
		{"not-a-tag!!", LocaleEnglish},
		{"fr", LocaleEnglish},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := Match(tt.code); got != tt.want {
				t.Errorf("Match(%q) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}

func TestT_FallsBackToEnglish(t *testing.T) {
	if got := T("fr", MsgNoTasks); got != catalog[LocaleEnglish][MsgNoTasks] {
		t.Errorf("T(fr) = %q, want English fallback", got)
	}
	if got := T(LocaleChinese, MsgNoTasks); got == catalog[LocaleEnglish][MsgNoTasks] {
		t.Error("expected Chinese catalog entry, got English")
	}
}

func TestTf(t *testing.T) {
	got := Tf(LocaleEnglish, MsgTaskCreated, "buy milk", int64(3))
	if !strings.Contains(got, "buy milk") || !strings.Contains(got, "#3") {
		t.Errorf("Tf() = %q, want title and task id interpolated", got)
	}
}

func TestCatalogComplete(t *testing.T) {
	keys := []Key{
		MsgTaskCreated, MsgTaskCompleted, MsgTaskDeleted, MsgTaskUpdated,
		MsgTaskListHead, MsgNoTasks, MsgErrValidation, MsgErrNotFound,
		MsgErrServer, MsgUnknownIntent,
	}

	for locale, msgs := range catalog {
		for _, key := range keys {
			if _, ok := msgs[key]; !ok {
				t.Errorf("locale %q is missing message %q", locale, key)
			}
		}
	}
}
