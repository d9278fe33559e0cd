package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const validationSystem = `You are a racing expert assistant. Your task is to determine if a query is related to horse racing or not.

Respond with only 'yes' or 'no'.
- Respond with 'yes' if the query is about horse racing, racing data, horses, jockeys, races, or betting.
- Respond with 'no' if the query is about anything else.`

const classifierSystem = `You are a racing expert assistant. Your task is to classify racing-related queries into 'simple' or 'complex' categories.

A simple query is one that can be answered with a single database query or a small set of related queries. Examples:
- "Show me today's races at Aintree"
- "What are the odds for horse X in race Y?"
- "List all horses running in race Z"

A complex query requires multiple database queries and data analysis. Examples:
- "Find the best horses for a Super Heinz bet"
- "Compare the performance of horses A and B"
- "Analyze the winning patterns of jockey X"

Classify the query and respond in this exact format:
{
    "next_node": "simple" or "complex",
    "reasoning": "Brief explanation of why the query is simple or complex"
}`

const plannerSystem = `You are a racing expert assistant. Your task is to determine which database tables to query based on the user's query.

Available Database Tables:
%s

Analyze the query and determine which tables to query. Respond in this exact format:
{
    "filters": {
        "table_name": {
            "field1": "value1",
            "field2": {
                "range": [min_value, max_value]
            },
            "field3": {
                "contains": "partial_text"
            },
            "sort": ["field_name", "asc|desc"],
            "limit": number_of_results,
            "fields": ["field1", "field2", "field3"]
        }
    },
    "content": [
        "table_name1",
        "table_name2"
    ]
}

CRITICAL RULES:
1. ALWAYS include the primary key field (ending with '_id') in the fields list for any table you query
2. For tables with relationships, ALWAYS include the foreign key fields that connect to related tables
3. When querying a table that has a relationship with another table, ALWAYS include both tables in either filters or content
4. For date ranges, ALWAYS use ISO format: "YYYY-MM-DD"
5. For numeric ranges, ALWAYS use decimal numbers (e.g., 2.0 instead of 2)
6. ALWAYS include a limit to prevent excessive data retrieval
7. ALWAYS include sort criteria to ensure consistent results
8. NEVER include tables that aren't in the provided database context
9. ALWAYS validate that the fields you request exist in the table schema`

const rendererSystem = `You are a racing expert assistant. Your task is to create a human-friendly response based on the database data.

Create a clear, concise, and informative response that:
1. Directly answers the user's query
2. Uses the database data to support your response but don't mention that the data is from a database
3. Formats the response in a readable way
4. Includes only the fields that are directly relevant to answering the specific query
5. Uses racing terminology appropriately
6. Is friendly and professional

If there is no relevant data, say so plainly and suggest trying a different query.`

const analysisSystem = `You are a racing expert assistant specializing in complex analytical queries. Your task is to break down complex racing queries into a series of analytical steps.

Available Database Tables:
%s

Analyze the query and create an analysis plan. Respond in this exact format:
{
    "analysis_steps": [
        {
            "step": "step_number",
            "description": "Description of what this step accomplishes",
            "required_data": [
                {
                    "table": "table_name",
                    "filters": {
                        "field": "value"
                    }
                }
            ],
            "analysis_type": "statistical|comparative|predictive|trend",
            "output_format": "table|chart|summary|list"
        }
    ],
    "final_output": {
        "format": "format_type",
        "key_metrics": ["metric1", "metric2"]
    }
}

Rules:
1. Break down complex queries into logical steps
2. Specify required data for each step
3. Define the type of analysis needed
4. Include relevant filters to reduce data size`

const analysisExecSystem = `You are a racing expert assistant. Your task is to execute a complex analysis plan and generate insights from the collected data. Generate specific, actionable insights supported by the data, make clear recommendations, and acknowledge limitations. Focus on answering the original query.`

// Classify routes a query: not racing at all, answerable with one filter
// plan, or needing multi-step analysis. A malformed model reply returns
// ErrUnclassified.
func (c *Client) Classify(ctx context.Context, query string) (Label, error) {
	reply, err := c.complete(ctx, validationSystem, "Query: "+query, 0)
	if err != nil {
		return "", err
	}
	switch strings.ToLower(strings.Trim(reply, " .'\"")) {
	case "no":
		return LabelNotRacing, nil
	case "yes":
	default:
		return "", fmt.Errorf("%w: validation reply %q", ErrUnclassified, reply)
	}

	reply, err = c.complete(ctx, classifierSystem, "Query: "+query, 0)
	if err != nil {
		return "", err
	}
	raw, err := extractJSON(reply)
	if err != nil {
		return "", err
	}
	var decision struct {
		NextNode  string `json:"next_node"`
		Reasoning string `json:"reasoning"`
	}
	if err := json.Unmarshal(raw, &decision); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnclassified, err)
	}

	switch decision.NextNode {
	case "simple":
		return LabelSimple, nil
	case "complex":
		return LabelComplex, nil
	default:
		return "", fmt.Errorf("%w: next_node %q", ErrUnclassified, decision.NextNode)
	}
}

// Plan asks the model for a filter plan over the given schema description.
// The returned JSON is the raw plan document; the query engine decodes and
// validates it.
func (c *Client) Plan(ctx context.Context, query, schemaContext string) (json.RawMessage, error) {
	reply, err := c.complete(ctx, fmt.Sprintf(plannerSystem, schemaContext), "Query: "+query, 0.2)
	if err != nil {
		return nil, err
	}
	raw, err := extractJSON(reply)
	if err != nil {
		c.log.Warn("planner reply unusable", zap.String("query", query))
		return nil, err
	}
	return raw, nil
}

// Render turns a result document into the reply shown to the user.
func (c *Client) Render(ctx context.Context, query, content string) (string, error) {
	user := fmt.Sprintf("Query: %s\n\nDatabase Response Data:\n%s", query, content)
	return c.complete(ctx, rendererSystem, user, 0.4)
}

// AnalysisPlan asks for the multi-step breakdown of a complex query.
func (c *Client) AnalysisPlan(ctx context.Context, query, schemaContext string) (json.RawMessage, error) {
	reply, err := c.complete(ctx, fmt.Sprintf(analysisSystem, schemaContext), "Query: "+query, 0.2)
	if err != nil {
		return nil, err
	}
	return extractJSON(reply)
}

// Analyze runs the execution step of the complex path: plan plus collected
// data in, insight text out.
func (c *Client) Analyze(ctx context.Context, query, plan, data string) (string, error) {
	user := fmt.Sprintf("Query: %s\n\nAnalysis Plan:\n%s\n\nAvailable Data:\n%s", query, plan, data)
	return c.complete(ctx, analysisExecSystem, user, 0.3)
}
