package ai

import "github.com/effectiveclass/classlens/internal/models"

// placeholderNarrative replaces any narrative field the model left empty, so
// downstream consumers can rely on non-empty strings.
const placeholderNarrative = "Analysis in progress."

var feedbackTemplates = map[models.Language]FeedbackRecord{
	models.LanguageEnglish: {
		TeachingQualityScore:   7.5,
		StudentEngagementScore: 6.5,
		OverallScore:           7.0,
		Strengths: "The teacher demonstrates good preparation and organization of the lesson. " +
			"The use of visual aids and step-by-step explanations helps students understand complex concepts. " +
			"The teacher maintains a clear and structured approach to content delivery.",
		AreasForImprovement: "Student participation could be enhanced through more interactive activities and group discussions. " +
			"The pace of instruction might need adjustment to accommodate different learning speeds. " +
			"Consider incorporating more real-world examples to make abstract concepts more relatable.",
		SpecificRecommendations: "1. Implement think-pair-share activities to increase student interaction. " +
			"2. Use formative assessment techniques like exit tickets to gauge understanding. " +
			"3. Incorporate technology tools for interactive learning. " +
			"4. Provide more opportunities for student-led discussions. " +
			"5. Consider differentiated instruction strategies for diverse learners.",
		Source: SourceTemplate,
	},
	models.LanguageRussian: {
		TeachingQualityScore:   7.5,
		StudentEngagementScore: 6.5,
		OverallScore:           7.0,
		Strengths: "Учитель демонстрирует хорошую подготовку и организацию урока. " +
			"Использование наглядных пособий и пошаговых объяснений помогает учащимся понимать сложные концепции. " +
			"Учитель поддерживает четкий и структурированный подход к подаче материала.",
		AreasForImprovement: "Участие учащихся можно улучшить с помощью более интерактивных занятий и групповых обсуждений. " +
			"Темп обучения может потребовать корректировки для учета различных скоростей обучения. " +
			"Рассмотрите возможность включения большего количества примеров из реальной жизни.",
		SpecificRecommendations: "1. Внедрите деятельность 'думай-обсуждай-делись' для увеличения взаимодействия учащихся. " +
			"2. Используйте методы формирующего оценивания. " +
			"3. Включите технологические инструменты для интерактивного обучения. " +
			"4. Предоставьте больше возможностей для обсуждений под руководством учащихся. " +
			"5. Рассмотрите стратегии дифференцированного обучения.",
		Source: SourceTemplate,
	},
	models.LanguageTajik: {
		TeachingQualityScore:   7.5,
		StudentEngagementScore: 6.5,
		OverallScore:           7.0,
		Strengths: "Муаллим тайёрӣ ва ташкили хубро дар дарс нишон медиҳад. " +
			"Истифодаи воситаҳои намоишӣ ва шарҳҳои қадам ба қадам ба донишҷӯён дар фаҳмиши мафҳумҳои мураккаб кӯмак мекунад. " +
			"Муаллим усули равшан ва сохташударо дар пешниҳоди мундариҷа нигоҳ медорад.",
		AreasForImprovement: "Иштироки донишҷӯёнро метавон бо воситаи фаъолиятҳои интерактивӣ ва муҳокимаҳои гурӯҳӣ беҳтар кард. " +
			"Суриати таълим метавонад барои ҳисобгирии суръатҳои гуногуни омӯзиш тағйир дода шавад. " +
			"Имконияти илова кардани мисолҳои ҳақиқӣро дида бароед.",
		SpecificRecommendations: "1. Фаъолиятҳои 'фикр кунед-муҳокима кунед-ҳамроҳ шавед'-ро барои зиёд кардани муоширати донишҷӯён ворид кунед. " +
			"2. Усулҳои арзёбии ташаккулӣ истифода баред. " +
			"3. Абзорҳои технологӣ барои омӯзиши интерактивӣ илова кунед. " +
			"4. Имкониятҳои бештар барои муҳокимаҳо дар зери роҳбарии донишҷӯён пешниҳод кунед. " +
			"5. Стратегияҳои таълими фарқкунандаро дида бароед.",
		Source: SourceTemplate,
	},
}

// TemplateFeedback returns the fixed per-language record used whenever
// external generation is unavailable or unreliable. Unknown languages get the
// English template.
func TemplateFeedback(language models.Language) FeedbackRecord {
	if record, ok := feedbackTemplates[language]; ok {
		return record
	}
	return feedbackTemplates[models.LanguageEnglish]
}
