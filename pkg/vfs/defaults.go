package vfs

// DefaultTree returns the file system a new desktop starts with.
func DefaultTree() *Tree {
	return &Tree{root: NewFolder(map[string]*Node{
		"Documents": NewFolder(map[string]*Node{
			"welcome.txt": NewFile("Welcome to your Documents folder."),
			"project_plan.md": NewFile("# Project Plan\n\n" +
				"- Step 1: Create a cool OS.\n" +
				"- Step 2: ???\n" +
				"- Step 3: Profit!"),
			"hello.py": NewFile("# Simple Python script\n" +
				"def greet(name):\n" +
				"    print(f\"Hello, {name}!\")\n\n" +
				"greet(\"World\")"),
			"script.js": NewFile("// Simple JavaScript\n" +
				"function sayHello(name) {\n" +
				"  console.log(`Hello, ${name}!`);\n" +
				"}\n\n" +
				"sayHello(\"User\");"),
		}),
		"Pictures": NewFolder(map[string]*Node{
			"background.jpg": NewFile("This is a placeholder for an image."),
		}),
		"System": NewFolder(map[string]*Node{
			"config.sys": NewFile("SYSTEM_BOOT=TRUE"),
		}),
		"readme.md": NewFile("# GeminiOS\nThis is a simulated file system."),
	})}
}
