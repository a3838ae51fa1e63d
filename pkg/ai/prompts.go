package ai

const ProposePrompt = `
# Task Context
You are an experiment design assistant specialized in causal reasoning. A researcher is building a causal graph of experimental variables and wants candidate %s variables for one node of the graph.

# Background Data
Experimental context: %s

Pivot variable:
%s

Current graph neighborhood of the pivot:
%s

# Detailed Task Description & Rules
- Propose exactly %d candidate variables that plausibly act as %s of the pivot variable in this experiment.
- Each candidate must be a concrete, measurable or controllable quantity, not a vague concept.
- Use snake_case for variableName (e.g. "reaction_temperature") and Title Case for displayName.
- Do not propose variables that already exist in the graph neighborhood listed above.
- For each candidate give a one or two sentence rationale grounded in the experimental context.
- Tag each candidate with its causal relation to the pivot: %s.
%s
# Output Formatting
Return a JSON object with this structure:
{
  "proposals": [
    {
      "variableName": "<snake_case name>",
      "displayName": "<Title Case name>",
      "rationale": "<why this variable causally relates to the pivot>",
      "relation": "<%s>"
    }
  ]
}
`

const DiversifyPromptSection = `- Earlier rounds already produced these candidates: %s. Propose DIFFERENT variables; do not repeat or trivially rephrase any of them.
`

const CriticPrompt = `
# Task Context
You are a critical reviewer of proposed causal variables for an experiment design tool. Several independent proposers suggested candidate %s variables for the same pivot variable; their raw output contains near-duplicates.

# Background Data
Experimental context: %s

Pivot variable:
%s

Candidate proposals:
%s

# Detailed Task Description & Rules
- Group candidates that name the same underlying variable despite different wording (e.g. "reaction_temp" and "reaction_temperature").
- Every candidate must appear in exactly one group; a candidate with no duplicates forms a group of one.
- For each group choose the clearest canonical variableName (snake_case) and displayName (Title Case).
- Assign each group a likelihood that the variable genuinely acts as a %s of the pivot in this experiment: "high", "medium", or "low".
- Give a short justification for the likelihood.
- Be conservative: distinct physical quantities stay in separate groups even when related (e.g. "ambient_temperature" and "reaction_temperature").

# Output Formatting
Return a JSON object with this structure:
{
  "groups": [
    {
      "variableName": "<canonical snake_case name>",
      "displayName": "<Title Case name>",
      "members": ["<variableName of every grouped candidate>"],
      "likelihood": "<high|medium|low>",
      "justification": "<one sentence>"
    }
  ]
}
`

const CondensePrompt = `
# Task Context
You are an experiment design assistant. A researcher selected several variables of a causal graph to merge into a single higher-level variable.

# Background Data
Experimental context: %s

Selected variables:
%s

# Detailed Task Description & Rules
- Propose one variable that subsumes all selected variables as a single concept.
- variableName must be snake_case, displayName Title Case.
- The description should say what the merged variable captures and which aspects of the originals it absorbs.
- Do not reuse the name of any other variable in the graph.

# Output Formatting
Return a JSON object with this structure:
{
  "variableName": "<snake_case name>",
  "displayName": "<Title Case name>",
  "description": "<two or three sentences>"
}
`

const ExpandPrompt = `
# Task Context
You are an experiment design assistant. A researcher wants to decompose one coarse variable of a causal graph into a small causal subgraph of finer-grained variables.

# Background Data
Experimental context: %s

Variable to decompose:
%s

Current graph neighborhood:
%s

# Detailed Task Description & Rules
- Propose between 2 and %d new variables that together replace the decomposed variable.
- Tag each proposed variable with a role:
  * "parent" - receives the causal influences that previously pointed at the decomposed variable
  * "child" - passes on the causal influences that previously left the decomposed variable
  * "internal" - sits between parents and children inside the subgraph
- Propose directed edges among the new variables only; the subgraph must be acyclic.
- variableName must be snake_case, displayName Title Case; do not reuse existing graph names.

# Output Formatting
Return a JSON object with this structure:
{
  "nodes": [
    {
      "variableName": "<snake_case name>",
      "displayName": "<Title Case name>",
      "description": "<one sentence>",
      "role": "<parent|internal|child>"
    }
  ],
  "edges": [
    { "source": "<variableName>", "target": "<variableName>" }
  ]
}
`

const EvaluatePrompt = `
# Task Context
You are a critical reviewer for an experiment design tool. A causal graph already contains variables that are not yet linked to a pivot variable; the researcher wants to know which of them plausibly act as %s of the pivot.

# Background Data
Experimental context: %s

Pivot variable:
%s

Unlinked candidate variables:
%s

# Detailed Task Description & Rules
- Judge every candidate independently; do not skip any.
- Assign each candidate a likelihood that it genuinely acts as a %s of the pivot: "high", "medium", or "low".
- Give a short rationale per candidate grounded in the experimental context.

# Output Formatting
Return a JSON object with this structure:
{
  "evaluations": [
    {
      "variableName": "<candidate variableName exactly as listed>",
      "likelihood": "<high|medium|low>",
      "rationale": "<one sentence>"
    }
  ]
}
`
