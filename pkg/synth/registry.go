// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

package synth

// Registry maps an operation name to a hand-picked example ArgumentSet. It is
// consulted before the heuristic rules.
type Registry map[string]ArgumentSet

// DefaultRegistry returns example arguments for the known OpenFDA tools.
func DefaultRegistry() Registry {
	drugArgs := ArgumentSet{"drug_name": DefaultSubject, "limit": 2}
	return Registry{
		// count and skip are left out on purpose; the server rejects them
		// together with search.
		"search_drug_labels":         {"search": DefaultSubject, "limit": DefaultLimit},
		"get_drug_adverse_reactions": drugArgs.Clone(),
		"get_drug_warnings":          drugArgs.Clone(),
		"get_drug_indications":       drugArgs.Clone(),
		"ae_pipeline_rag": {
			"drug":  DefaultSubject,
			"query": "What are the main side effects?",
			"top_k": 3,
		},
	}
}

// Lookup returns a copy of the example registered for name.
func (r Registry) Lookup(name string) (ArgumentSet, bool) {
	args, ok := r[name]
	if !ok {
		return nil, false
	}
	return args.Clone(), true
}
