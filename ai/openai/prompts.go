package openai

const summaryPromptTemplate = `Summarize the following captured content as concise markdown.

Keep the summary faithful to the source: preserve concrete names, commands,
error messages, and numbers. Use short headings and bullet points where they
help. Do not add information that is not in the source, and do not include
any preamble or closing remarks.

Content:

%s`
