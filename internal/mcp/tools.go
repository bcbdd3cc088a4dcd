package mcp

import "github.com/mark3labs/mcp-go/mcp"

var generateToolDef = mcp.NewTool("password_generate",
	mcp.WithDescription("Generate a random password and rate its strength. Randomness is not cryptographic."),
	mcp.WithNumber("length", mcp.Description("Password length (default from config, usually 16)")),
	mcp.WithBoolean("uppercase", mcp.Description("Include A-Z (default true)")),
	mcp.WithBoolean("lowercase", mcp.Description("Include a-z (default true)")),
	mcp.WithBoolean("numbers", mcp.Description("Include 0-9 (default true)")),
	mcp.WithBoolean("symbols", mcp.Description("Include !@#$%^&*()_+-=[]{}|;:,.<>? (default true)")),
	mcp.WithBoolean("exclude_similar", mcp.Description("Drop l, 1, I, O, 0")),
	mcp.WithBoolean("exclude_ambiguous", mcp.Description("Drop { } [ ] ( ) / \\ | ` ~")),
)

var scoreToolDef = mcp.NewTool("password_score",
	mcp.WithDescription("Rate an existing password: Weak, Fair, Good or Strong with a 0-6 score and hints."),
	mcp.WithString("password", mcp.Required(), mcp.Description("Password to rate")),
)

var listToolDef = mcp.NewTool("password_list",
	mcp.WithDescription("List saved passwords in the order they were saved."),
)

var saveToolDef = mcp.NewTool("password_save",
	mcp.WithDescription("Save a password with an optional description. Stored in plain text."),
	mcp.WithString("password", mcp.Required(), mcp.Description("Password to save")),
	mcp.WithString("description", mcp.Description("Label (default \"No description\")")),
)

var clearToolDef = mcp.NewTool("password_clear",
	mcp.WithDescription("Delete every saved password."),
)
