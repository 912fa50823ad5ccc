package csvstream_test

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/oleg578/csvstream"
)

func ExampleWriter() {
	w := csvstream.NewWriter(os.Stdout)
	w.Write([]string{"Item", "Contains, comma"})
	w.Write([]string{"Quote", `He said "Hi"`})
	w.Flush()
	// Output:
	// Item,"Contains, comma"
	// Quote,"He said ""Hi"""
}

func ExampleWriter_tab() {
	w := csvstream.NewWriter(os.Stdout)
	w.Comma = '\t'
	w.WriteHeader([][]byte{[]byte("Name"), []byte("Age")})
	w.WriteRow([][]byte{[]byte("Alice"), []byte("30")})
	w.Flush()
	// Output:
	// Name	Age
	// Alice	30
}

func ExampleReader_ReadRow() {
	r := csvstream.NewReader(strings.NewReader("Multi,\"Line\nValue\"\r\nA,B"))
	for {
		row, err := r.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Printf("%q\n", row)
	}
	// Output:
	// ["Multi" "Line\nValue"]
	// ["A" "B"]
}
