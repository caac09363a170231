package main

import (
	"fmt"
	"os"

	"github.com/mgrady/customel/html"
	"github.com/mgrady/customel/js"
)

// demoPage is used when no page file is given on the command line.
const demoPage = `<html><body>
<button is="x-counter" id="demo">press me</button>
<script>
class Counter extends withAutoEvents(HTMLElement) {
	constructor() {
		super();
		this.count = 0;
	}
	onClick(event) {
		this.count++;
		this.setAttribute('data-count', String(this.count));
		console.log('clicked', this.count, 'time(s)');
	}
}
customElements.define('x-counter', Counter, { extends: 'button' });
</script>
</body></html>`

func main() {
	source := demoPage
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "reading page:", err)
			os.Exit(1)
		}
		source = string(data)
	}

	env, err := js.NewEnvironment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "setting up environment:", err)
		os.Exit(1)
	}
	env.Runtime().SetOnWarning(func(message string) {
		fmt.Println("[warn]", message)
	})

	doc, err := html.Parse(source)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parsing page:", err)
		os.Exit(1)
	}
	env.LoadDocument(doc)
	env.ExecuteScripts()

	if btn := doc.GetElementById("demo"); btn != nil {
		for i := 0; i < 3; i++ {
			env.DispatchNamed(btn, "click")
		}
		fmt.Printf("after 3 clicks: data-count=%q\n", btn.GetAttribute("data-count"))
	}

	for _, err := range env.Runtime().Errors() {
		fmt.Fprintln(os.Stderr, "script error:", err)
	}
	if len(env.Runtime().Errors()) > 0 {
		os.Exit(1)
	}
}
