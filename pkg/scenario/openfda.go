// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

package scenario

import "github.com/mcpany/fdaclient/pkg/synth"

// OpenFDA returns the walkthrough of the OpenFDA drug database tools.
func OpenFDA() Plan {
	return Plan{
		Title: "OpenFDA drug database walkthrough",
		Scenarios: []Scenario{
			{
				Title:     "Example 1: drug label for ibuprofen",
				Tool:      "search_drug_labels",
				Arguments: synth.ArgumentSet{"search": "ibuprofen", "limit": 1},
				Fields: []Field{
					{Label: "Brand names", Query: `.results[0].openfda.brand_name // empty | .[:3]`},
					{Label: "Generic names", Query: `.results[0].openfda.generic_name // empty | .[:3]`},
					{Label: "Manufacturers", Query: `.results[0].openfda.manufacturer_name // empty | .[:2]`},
					{Label: "Indications", Query: `.results[0].indications_and_usage[0]? // empty`, MaxLength: 200},
				},
			},
			{
				Title:     "Example 2: adverse reactions of aspirin",
				Tool:      "get_drug_adverse_reactions",
				Arguments: synth.ArgumentSet{"drug_name": "aspirin", "limit": 1},
				Fields: []Field{
					{Label: "Adverse reactions", Query: `.results[0].adverse_reactions[0]? // empty`, MaxLength: 300, Missing: "no adverse reaction information found"},
				},
			},
			{
				Title:     "Example 3: warnings for acetaminophen (Tylenol)",
				Tool:      "get_drug_warnings",
				Arguments: synth.ArgumentSet{"drug_name": "acetaminophen", "limit": 1},
				Fields: []Field{
					{Label: "Warnings", Query: `.results[0].warnings[0]? // empty`, MaxLength: 300, Missing: "no warning information found"},
				},
			},
			{
				Title:        "Example 4: RAG analysis of cardiovascular side effects of ibuprofen",
				Tool:         "ae_pipeline_rag",
				Arguments:    synth.ArgumentSet{"query": "cardiovascular side effects", "drug": "ibuprofen", "top_k": 3},
				Raw:          true,
				RawMaxLength: 400,
			},
		},
		Batches: []Batch{
			{
				Title:      "Example 5: indications of common pain relievers",
				Tool:       "get_drug_indications",
				SubjectKey: "drug_name",
				Subjects:   []string{"aspirin", "ibuprofen", "naproxen"},
				Arguments:  synth.ArgumentSet{"limit": 1},
				Field:      Field{Label: "Brand names", Query: `.results[0].openfda.brand_name // empty | .[:2]`, Missing: "unknown"},
			},
		},
	}
}
