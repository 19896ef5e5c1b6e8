package i18n

import "fmt"

// Key identifies a message in the catalog.
type Key string

const (
	MsgTaskCreated   Key = "task_created"   // args: title, task id
	MsgTaskCompleted Key = "task_completed" // args: title, task id
	MsgTaskDeleted   Key = "task_deleted"   // args: title, task id
	MsgTaskUpdated   Key = "task_updated"   // args: title, task id
	MsgTaskListHead  Key = "task_list_head" // args: count
	MsgNoTasks       Key = "no_tasks"
	MsgErrValidation Key = "err_validation"
	MsgErrNotFound   Key = "err_not_found"
	MsgErrServer     Key = "err_server"
	MsgUnknownIntent Key = "unknown_intent"
)

// catalog holds the static per-locale message templates. English is the
// fallback for any missing entry.
var catalog = map[string]map[Key]string{
	LocaleEnglish: {
		MsgTaskCreated:   "✓ Added '%s' to your tasks (Task #%d)",
		MsgTaskCompleted: "✓ Marked '%s' as completed! Great job! (Task #%d)",
		MsgTaskDeleted:   "✓ Deleted '%s' from your tasks (Task #%d)",
		MsgTaskUpdated:   "✓ Updated '%s' (Task #%d)",
		MsgTaskListHead:  "You have %d tasks:",
		MsgNoTasks:       "You don't have any tasks yet.",
		MsgErrValidation: "I couldn't process that request. Please check your input and try again.",
		MsgErrNotFound:   "I couldn't find that task. Please make sure it exists.",
		MsgErrServer:     "Something went wrong on my end. Please try again in a moment.",
		MsgUnknownIntent: "I'm not sure what you'd like to do. You can ask me to add, list, complete, update or delete tasks.",
	},
	LocaleUrdu: {
		MsgTaskCreated:   "✓ '%s' آپ کے کاموں میں شامل کر دیا گیا (کام #%d)",
		MsgTaskCompleted: "✓ '%s' مکمل ہو گیا! شاباش! (کام #%d)",
		MsgTaskDeleted:   "✓ '%s' آپ کے کاموں سے حذف کر دیا گیا (کام #%d)",
		MsgTaskUpdated:   "✓ '%s' اپ ڈیٹ ہو گیا (کام #%d)",
		MsgTaskListHead:  "آپ کے %d کام ہیں:",
		MsgNoTasks:       "ابھی آپ کا کوئی کام نہیں ہے۔",
		MsgErrValidation: "میں یہ درخواست پروسیس نہیں کر سکا۔ براہ کرم دوبارہ کوشش کریں۔",
		MsgErrNotFound:   "مجھے یہ کام نہیں ملا۔ براہ کرم یقینی بنائیں کہ یہ موجود ہے۔",
		MsgErrServer:     "کچھ غلط ہو گیا۔ براہ کرم تھوڑی دیر بعد دوبارہ کوشش کریں۔",
		MsgUnknownIntent: "مجھے یقین نہیں کہ آپ کیا کرنا چاہتے ہیں۔ آپ مجھ سے کام شامل کرنے، دیکھنے، مکمل کرنے، اپ ڈیٹ کرنے یا حذف کرنے کو کہہ سکتے ہیں۔",
	},
	LocaleArabic: {
		MsgTaskCreated:   "✓ تمت إضافة '%s' إلى مهامك (المهمة #%d)",
		MsgTaskCompleted: "✓ تم إنجاز '%s'! أحسنت! (المهمة #%d)",
		MsgTaskDeleted:   "✓ تم حذف '%s' من مهامك (المهمة #%d)",
		MsgTaskUpdated:   "✓ تم تحديث '%s' (المهمة #%d)",
		MsgTaskListHead:  "لديك %d مهام:",
		MsgNoTasks:       "ليس لديك أي مهام بعد.",
		MsgErrValidation: "تعذر معالجة هذا الطلب. يرجى التحقق من الإدخال والمحاولة مرة أخرى.",
		MsgErrNotFound:   "لم أتمكن من العثور على هذه المهمة. يرجى التأكد من وجودها.",
		MsgErrServer:     "حدث خطأ ما. يرجى المحاولة مرة أخرى بعد قليل.",
		MsgUnknownIntent: "لست متأكدًا مما تريد فعله. يمكنك أن تطلب مني إضافة المهام أو عرضها أو إكمالها أو تحديثها أو حذفها.",
	},
	LocaleChinese: {
		MsgTaskCreated:   "✓ 已将“%s”添加到你的任务（任务 #%d）",
		MsgTaskCompleted: "✓ 已完成“%s”！干得好！（任务 #%d）",
		MsgTaskDeleted:   "✓ 已从任务中删除“%s”（任务 #%d）",
		MsgTaskUpdated:   "✓ 已更新“%s”（任务 #%d）",
		MsgTaskListHead:  "你有 %d 个任务：",
		MsgNoTasks:       "你还没有任何任务。",
		MsgErrValidation: "我无法处理这个请求，请检查输入后重试。",
		MsgErrNotFound:   "我找不到这个任务，请确认它存在。",
		MsgErrServer:     "出了点问题，请稍后再试。",
		MsgUnknownIntent: "我不确定你想做什么。你可以让我添加、查看、完成、更新或删除任务。",
	},
	LocaleTurkish: {
		MsgTaskCreated:   "✓ '%s' görevlerine eklendi (Görev #%d)",
		MsgTaskCompleted: "✓ '%s' tamamlandı olarak işaretlendi! Harika! (Görev #%d)",
		MsgTaskDeleted:   "✓ '%s' görevlerinden silindi (Görev #%d)",
		MsgTaskUpdated:   "✓ '%s' güncellendi (Görev #%d)",
		MsgTaskListHead:  "%d görevin var:",
		MsgNoTasks:       "Henüz hiç görevin yok.",
		MsgErrValidation: "Bu isteği işleyemedim. Lütfen girdini kontrol edip tekrar dene.",
		MsgErrNotFound:   "Bu görevi bulamadım. Lütfen var olduğundan emin ol.",
		MsgErrServer:     "Bir şeyler ters gitti. Lütfen birazdan tekrar dene.",
		MsgUnknownIntent: "Ne yapmak istediğinden emin değilim. Görev ekleyebilir, listeleyebilir, tamamlayabilir, güncelleyebilir veya silebilirim.",
	},
}

// T returns the message template for the given locale and key, falling
// back to English for unknown locales or missing entries.
func T(locale string, key Key) string {
	if msgs, ok := catalog[locale]; ok {
		if msg, ok := msgs[key]; ok {
			return msg
		}
	}
	return catalog[LocaleEnglish][key]
}

// Tf formats the message template for the locale with the given
// arguments.
func Tf(locale string, key Key, args ...any) string {
	return fmt.Sprintf(T(locale, key), args...)
}
