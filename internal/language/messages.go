package language

import (
	"fmt"

	"github.com/futig/survey-assistant/internal/entity"
)

const (
	// LanguagePrompt opens every conversation
	LanguagePrompt = `Please select your preferred language / Por favor, seleccione su idioma preferido / कृपया अपनी पसंदीदा भाषा चुनें / 请选择您的首选语言 / Veuillez sélectionner votre langue préférée:

Available languages:
- English
- Spanish (Español)
- Hindi (हिंदी)
- Chinese (中文)
- French (Français)

Type your preferred language:`

	// InvalidLanguage is repeated until a catalog language is typed
	InvalidLanguage = `Invalid language selection. Please type one of the following:
- English
- Spanish/Español
- Hindi/हिंदी
- Chinese/中文
- French/Français`
)

// Text identifies a fixed, non-generated assistant message
type Text int

const (
	TextThankYou Text = iota
	TextSaveFailed
	TextRetry
	TextConsentReminder
	TextAlreadyCompleted
)

var texts = map[Text]map[string]string{
	TextThankYou: {
		"en": "Thank you! Your survey responses have been successfully saved. We appreciate your participation in our healthcare survey.",
		"es": "¡Gracias! Sus respuestas a la encuesta se han guardado correctamente. Agradecemos su participación en nuestra encuesta de salud.",
		"hi": "धन्यवाद! आपके सर्वेक्षण उत्तर सफलतापूर्वक सहेज लिए गए हैं। हमारे स्वास्थ्य सेवा सर्वेक्षण में भाग लेने के लिए हम आपके आभारी हैं।",
		"zh": "谢谢！您的调查答案已成功保存。感谢您参与我们的医疗保健调查。",
		"fr": "Merci ! Vos réponses au questionnaire ont bien été enregistrées. Nous vous remercions de votre participation à notre enquête sur les soins de santé.",
	},
	TextSaveFailed: {
		"en": "We encountered an error saving your responses. Please send your last answer again to retry.",
		"es": "Se produjo un error al guardar sus respuestas. Envíe de nuevo su última respuesta para volver a intentarlo.",
		"hi": "आपके उत्तर सहेजते समय एक त्रुटि हुई। कृपया पुनः प्रयास करने के लिए अपना अंतिम उत्तर फिर से भेजें।",
		"zh": "保存您的答案时出错。请重新发送您的最后一个答案以重试。",
		"fr": "Une erreur s'est produite lors de l'enregistrement de vos réponses. Veuillez renvoyer votre dernière réponse pour réessayer.",
	},
	TextRetry: {
		"en": "Sorry, something went wrong on our side. Please try again.",
		"es": "Lo sentimos, algo salió mal de nuestro lado. Por favor, inténtelo de nuevo.",
		"hi": "क्षमा करें, हमारी ओर से कुछ गलत हो गया। कृपया पुनः प्रयास करें।",
		"zh": "抱歉，我们这边出了点问题。请再试一次。",
		"fr": "Désolé, un problème est survenu de notre côté. Veuillez réessayer.",
	},
	TextConsentReminder: {
		"en": "Whenever you are ready to begin the survey, reply \"%s\".",
		"es": "Cuando esté listo para comenzar la encuesta, responda \"%s\".",
		"hi": "जब आप सर्वेक्षण शुरू करने के लिए तैयार हों, तो \"%s\" लिखें।",
		"zh": "当您准备好开始调查时，请回复“%s”。",
		"fr": "Lorsque vous êtes prêt à commencer le questionnaire, répondez « %s ».",
	},
	TextAlreadyCompleted: {
		"en": "This survey is already complete. Thank you for your participation.",
		"es": "Esta encuesta ya está completa. Gracias por su participación.",
		"hi": "यह सर्वेक्षण पहले ही पूरा हो चुका है। भाग लेने के लिए धन्यवाद।",
		"zh": "本次调查已完成。感谢您的参与。",
		"fr": "Ce questionnaire est déjà terminé. Merci de votre participation.",
	},
}

// Render returns the fixed message in lang, falling back to English
func Render(text Text, lang *entity.Language) string {
	localized := texts[text]

	code := English.Code
	if lang != nil {
		if _, ok := localized[lang.Code]; ok {
			code = lang.Code
		}
	}

	msg := localized[code]
	if text == TextConsentReminder {
		l := English
		if lang != nil {
			l = *lang
		}
		return fmt.Sprintf(msg, AffirmativeWord(l))
	}

	return msg
}
