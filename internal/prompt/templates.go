package prompt

// Shared JSON output schema appended to every ranking prompt.
const outputSchema = `{
  "top_k": [
    {
      "method": "<method_signature>",
      "justification": "<short evidence-based explanation>"
    }
  ]
}`

// Template 1: trace-aware ranking.
const template1 = `You are debugging a failing test.

Bug report:
{BUG_REPORT}

Failing test:
{FAILING_TEST}

Failure trace:
{FAILURE_TRACE}

Candidate methods:
{CODE_SNIPPETS}

Using the failure trace, rank the top-{K} most suspicious methods. Focus on methods that were executed during the failing run.

Output format:
{OUTPUT_SCHEMA}`

// Template 2 preliminary step: summarize the expected behavior of the
// system under test from the failing test's code.
const expectedBehaviorPrompt = `You are given the code of a failing test case.

Summarize the expected behavior of the system under test in plain English.

Test name:
{FAILING_TEST}

Test code:
{TEST_CODE_SNIPPET}

Write 3-6 short bullet points describing:
- Preconditions / inputs set by the test
- The action performed (what is called)
- The expected outputs / postconditions (assertions)

Do not propose fixes. Do not discuss implementation details.

Output strictly in JSON using the following schema:
{
  "expected_behavior": [
    "<bullet 1>",
    "<bullet 2>"
  ]
}`

// Template 2: trace plus expected behavior.
const template2 = `You are debugging a failing test by comparing expected and observed behavior.

Bug report:
{BUG_REPORT}

Failing test:
{FAILING_TEST}

Expected behavior (from the test code):
{EXPECTED_BEHAVIOR}

Observed failure trace:
{FAILURE_TRACE}

Candidate methods:
{CODE_SNIPPETS}

Identify which method is most likely responsible for the mismatch between expected and observed behavior. Rank the top-{K} most suspicious methods.

Output format:
{OUTPUT_SCHEMA}`

// Template 3: FlexFL-style debugging assistant.
const template3 = `You are a debugging assistant of our software. You will be presented with a bug report and a trigger test. Your task is to locate the top-{K} most likely culprit methods based on the bug report and the trigger test.

Bug report:
{BUG_REPORT}

Failing test:
{FAILING_TEST}

Failure trace:
{FAILURE_TRACE}

Candidate methods:
{CODE_SNIPPETS}

Based on the available information, provide the top-{K} most likely culprit methods for the bug. Since your answer will be processed automatically, please give your answer in the format as:
{OUTPUT_SCHEMA}`

const zeroShotPrefix = `Analyze the following bug information and identify the most likely buggy methods.

Previous candidate list from last iteration:
{PREVIOUS_CANDIDATES}

`

const zeroShotSuffix = `
Rank the top-{K} most suspicious methods based solely on the information provided above.

Output format:
{OUTPUT_SCHEMA}`

const selfConsistencyPrefix = `Independently analyze the information below and identify the most likely buggy methods. Do not reference or rely on any previous analysis or outputs.

`

const selfConsistencySuffix = `
Produce a ranked list of the top-{K} most suspicious methods.

Output format:
{OUTPUT_SCHEMA}`
