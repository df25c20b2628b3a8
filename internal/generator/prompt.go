package generator

import (
	"strings"

	"recipechat/internal/domain"
)

// RecipeTemplate is the instruction sent to the model. {documents} and {query} are substituted.
const RecipeTemplate = `Create a recipe that fits the following nutritional values and dietary requirements based solely on the given documents. If the documents do not contain enough information to create a recipe, state that creating the recipe is not possible with the available information. Ensure the recipe is detailed, including ingredients and preparation steps, and your answer should be no longer than 500 words.
Documents:{documents}
Question:{query}
Answer:`

// RenderPrompt fills RecipeTemplate with the newline-joined document contents and the query.
func RenderPrompt(query string, docs []domain.Document) string {
	contents := make([]string, len(docs))
	for i, d := range docs {
		contents[i] = d.Content
	}
	r := strings.NewReplacer(
		"{documents}", strings.Join(contents, "\n"),
		"{query}", query,
	)
	return r.Replace(RecipeTemplate)
}
