package ai

import (
	"fmt"

	"github.com/effectiveclass/classlens/internal/models"
)

// subjectGuidance maps a subject category to the guidance sentence embedded
// in the feedback prompt, per output language. Lookup is by exact category;
// categories without a dedicated entry fall back to defaultGuidance. The
// %s placeholder receives the lesson theme.
var subjectGuidance = map[models.Language]map[models.Subject]string{
	models.LanguageEnglish: {
		models.SubjectMathematics: "Focus on mathematical concepts, problem-solving approaches, clarity of explanations, use of visual aids, step-by-step demonstrations, and student understanding of %s.",
		models.SubjectPhysics:     "Focus on physical concepts, mathematical applications, experimental demonstrations, problem-solving, and understanding of %s principles.",
		models.SubjectChemistry:   "Focus on chemical reactions, laboratory safety, molecular understanding, practical applications, and %s chemical concepts.",
		models.SubjectBiology:     "Focus on biological systems, scientific observation, classification, ecological relationships, and understanding of %s biological processes.",
		models.SubjectHistory:     "Focus on historical analysis, source evaluation, chronological understanding, cultural context, and interpretation of %s historical events.",
		models.SubjectLiterature:  "Focus on literary analysis, text interpretation, critical thinking, creative expression, and understanding of %s literary works.",
		models.SubjectLanguage:    "Focus on language acquisition, grammar instruction, vocabulary building, pronunciation, reading comprehension, and %s language skills.",
	},
	models.LanguageRussian: {
		models.SubjectMathematics: "Сосредоточьтесь на математических концепциях, подходах к решению задач, ясности объяснений, использовании наглядных пособий, пошаговых демонстрациях и понимании студентами %s.",
		models.SubjectPhysics:     "Сосредоточьтесь на физических концепциях, математических приложениях, экспериментальных демонстрациях, решении задач и понимании принципов %s.",
		models.SubjectChemistry:   "Сосредоточьтесь на химических реакциях, лабораторной безопасности, молекулярном понимании, практических применениях и химических концепциях %s.",
		models.SubjectBiology:     "Сосредоточьтесь на биологических системах, научном наблюдении, классификации, экологических отношениях и понимании биологических процессов %s.",
		models.SubjectHistory:     "Сосредоточьтесь на историческом анализе, оценке источников, хронологическом понимании, культурном контексте и интерпретации исторических событий %s.",
		models.SubjectLiterature:  "Сосредоточьтесь на литературном анализе, интерпретации текста, критическом мышлении, творческом выражении и понимании литературных произведений %s.",
		models.SubjectLanguage:    "Сосредоточьтесь на приобретении языка, обучении грамматике, построении словарного запаса, произношении, понимании чтения и языковых навыках %s.",
	},
	models.LanguageTajik: {
		models.SubjectMathematics: "Ба мафҳумҳои математикӣ, усулҳои ҳалли масъалаҳо, равшании шарҳҳо, истифодаи воситаҳои намоишӣ, намоишҳои қадам ба қадам ва фаҳмиши донишҷӯён аз %s диққат диҳед.",
		models.SubjectPhysics:     "Ба мафҳумҳои физикӣ, истифодаи математикӣ, намоишҳои таҷрибавӣ, ҳалли масъалаҳо ва фаҳмиши принсипҳои %s диққат диҳед.",
		models.SubjectChemistry:   "Ба реаксияҳои химиявӣ, бехатарии лабораторӣ, фаҳмиши молекулярӣ, истифодаи амалӣ ва мафҳумҳои химиявӣ %s диққат диҳед.",
		models.SubjectBiology:     "Ба системаҳои биологӣ, мушоҳидаи илмӣ, тасниф, муносибатҳои экологӣ ва фаҳмиши равандҳои биологӣ %s диққат диҳед.",
		models.SubjectHistory:     "Ба таҳлили таърихӣ, арзёбии манбаъҳо, фаҳмиши хронологикӣ, контексти фарҳангӣ ва тафсири вокеъҳои таърихӣ %s диққат диҳед.",
		models.SubjectLiterature:  "Ба таҳлили адабӣ, тафсири матн, фикри интиқодӣ, ибрози иҷодӣ ва фаҳмиши асарҳои адабӣ %s диққат диҳед.",
		models.SubjectLanguage:    "Ба омӯзиши забон, таълими грамматика, сохтани луғат, талаффуз, фаҳмиши хондан ва маҳоратҳои забонӣ %s диққат диҳед.",
	},
}

var defaultGuidance = map[models.Language]string{
	models.LanguageEnglish: "Focus on general teaching effectiveness, student engagement, and understanding of %s.",
	models.LanguageRussian: "Сосредоточьтесь на общей эффективности преподавания, вовлеченности учащихся и понимании %s.",
	models.LanguageTajik:   "Ба самаранокии умумии таълим, иштироки донишҷӯён ва фаҳмиши %s диққат диҳед.",
}

// SubjectGuidance selects the prompt guidance for a subject category and
// output language, falling back to the default category and then to English.
func SubjectGuidance(subject models.Subject, theme string, language models.Language) string {
	perLanguage, ok := subjectGuidance[language]
	if !ok {
		language = models.LanguageEnglish
		perLanguage = subjectGuidance[language]
	}
	if guidance, ok := perLanguage[subject]; ok {
		return fmt.Sprintf(guidance, theme)
	}
	return fmt.Sprintf(defaultGuidance[language], theme)
}
