package rag

import (
	"github.com/akolanti/ragchain/internal/rag/prompt"
)

const (
	contextualizeSystemPrompt = "Given a chat history and the latest user question " +
		"which might reference context in the chat history, " +
		"formulate a standalone question which can be understood " +
		"without the chat history. Do NOT answer the question, just " +
		"reformulate it if needed and otherwise return it as is."

	qaSystemPrompt = "You are an assistant for question-answering tasks. Use " +
		"the following pieces of retrieved context to answer the " +
		"question. If you don't know the answer, just say that you " +
		"don't know. Use three sentences maximum and keep the answer " +
		"concise." +
		"\n\n" +
		"{context}"

	varContext = "context"
	varHistory = "chat_history"
	varInput   = "input"
)

var ContextualizePrompt = prompt.New(
	prompt.System(contextualizeSystemPrompt),
	prompt.MessagesPlaceholder(varHistory),
	prompt.Human("{"+varInput+"}"),
)

var QAPrompt = prompt.New(
	prompt.System(qaSystemPrompt),
	prompt.MessagesPlaceholder(varHistory),
	prompt.Human("{"+varInput+"}"),
)
