// Package openai provides AI service implementations using OpenAI-compatible
// APIs, including local inference servers like Ollama, llama.cpp and vLLM.
//
// The package implements all five service interfaces from the parent ai
// package: Embedder over the embeddings endpoint, and Extractor plus Judge
// over JSON-mode chat completions. Responses pass through code-fence
// stripping and lightweight JSON repair before parsing, with up to three
// attempts per call.
//
// Judge prompts reference entities by zero-based index instead of ID so that
// 64-bit hash IDs never round-trip through JSON numbers.
package openai
