/*******************************************************************************
 * Copyright (c) 2026 Genome Research Ltd.
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

package samplesheet

import (
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/inconshreveable/log15"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuild(t *testing.T) {
	Convey("Given an input directory of read files", t, func() {
		dir := t.TempDir()
		b := NewBuilder(nil)

		Convey("a single paired sample is found with absolute paths", func() {
			r1 := createFile(t, dir, "sample1_R1.fastq.gz")
			r2 := createFile(t, dir, "sample1_R2.fastq.gz")

			m, err := b.Build(dir)
			So(err, ShouldBeNil)
			So(m, ShouldResemble, Manifest{
				"sample1": {R1: r1, R2: r2},
			})
			So(filepath.IsAbs(m["sample1"].R1), ShouldBeTrue)
		})

		Convey("N paired samples produce N complete entries, recursing into subdirs", func() {
			const n = 5

			for i := range n {
				sub := filepath.Join(dir, fmt.Sprintf("run%d", i%2))
				So(os.MkdirAll(sub, 0o755), ShouldBeNil)

				createFile(t, sub, fmt.Sprintf("S%d_L001_R1_001.fastq.gz", i))
				createFile(t, sub, fmt.Sprintf("S%d_L001_R2_001.fastq.gz", i))
			}

			m, err := b.Build(dir)
			So(err, ShouldBeNil)
			So(len(m), ShouldEqual, n)

			for name, sample := range m {
				So(name, ShouldStartWith, "S")
				So(name, ShouldEndWith, "_L001")
				So(sample.R1, ShouldNotBeBlank)
				So(sample.R2, ShouldNotBeBlank)

				_, err := os.Stat(sample.R1)
				So(err, ShouldBeNil)

				_, err = os.Stat(sample.R2)
				So(err, ShouldBeNil)
			}
		})

		Convey("the various recognised naming conventions are all understood", func() {
			for _, name := range []string{
				"a.1.fq", "a.2.fq",
				"b_1.fastq", "b_2.fastq",
				"c.R1.extra.fq.gz", "c.R2.extra.fq.gz",
			} {
				createFile(t, dir, name)
			}

			m, err := b.Build(dir)
			So(err, ShouldBeNil)
			So(m.Names(), ShouldResemble, []string{"a", "b", "c"})
			So(m["c"].R2, ShouldEqual, filepath.Join(dir, "c.R2.extra.fq.gz"))
		})

		Convey("unrelated files are ignored", func() {
			createFile(t, dir, "notes.txt")
			createFile(t, dir, "sample1_R1.bam")
			createFile(t, dir, "sample1_R3.fastq")
			So(os.Mkdir(filepath.Join(dir, "x_R1.fastq"), 0o755), ShouldBeNil)

			m, err := b.Build(dir)
			So(err, ShouldBeNil)
			So(m, ShouldBeEmpty)
		})

		Convey("single-end samples are allowed", func() {
			r1 := createFile(t, dir, "solo_R1.fq")

			m, err := b.Build(dir)
			So(err, ShouldBeNil)
			So(m, ShouldResemble, Manifest{"solo": {R1: r1}})
		})

		Convey("symlinked read files are followed", func() {
			target := createFile(t, t.TempDir(), "real.fastq")
			link := filepath.Join(dir, "linked_R1.fastq")
			So(os.Symlink(target, link), ShouldBeNil)

			m, err := b.Build(dir)
			So(err, ShouldBeNil)
			So(m["linked"].R1, ShouldEqual, link)
		})

		Convey("duplicate roles are resolved to the lexically last path, with a warning", func() {
			for _, sub := range []string{"a", "b"} {
				So(os.Mkdir(filepath.Join(dir, sub), 0o755), ShouldBeNil)
			}

			createFile(t, filepath.Join(dir, "a"), "dup_R1.fastq")
			last := createFile(t, filepath.Join(dir, "b"), "dup_R1.fastq")

			var warnings int

			logger := log15.New()
			logger.SetHandler(log15.FuncHandler(func(r *log15.Record) error {
				if r.Lvl == log15.LvlWarn {
					warnings++
				}

				return nil
			}))

			m, err := NewBuilder(logger).Build(dir)
			So(err, ShouldBeNil)
			So(m["dup"].R1, ShouldEqual, last)
			So(warnings, ShouldEqual, 1)
		})

		Convey("unreadable subdirectories are skipped, with a warning", func() {
			locked := filepath.Join(dir, "locked")
			So(os.Mkdir(locked, 0o755), ShouldBeNil)
			createFile(t, locked, "hidden_R1.fastq")
			kept := createFile(t, dir, "kept_R1.fastq")

			So(os.Chmod(locked, 0), ShouldBeNil)
			defer os.Chmod(locked, 0o755) //nolint:errcheck

			var warnings int

			logger := log15.New()
			logger.SetHandler(log15.FuncHandler(func(r *log15.Record) error {
				if r.Lvl == log15.LvlWarn {
					warnings++
				}

				return nil
			}))

			m, err := NewBuilder(logger).Build(dir)
			So(err, ShouldBeNil)
			So(m["kept"].R1, ShouldEqual, kept)

			found, err := HasReadFiles(dir)
			So(err, ShouldBeNil)
			So(found, ShouldBeTrue)

			if os.Geteuid() != 0 {
				So(m, ShouldNotContainKey, "hidden")
				So(warnings, ShouldEqual, 1)
			}
		})

		Convey("a missing directory is an error", func() {
			_, err := b.Build(filepath.Join(dir, "missing"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSampleSheetFile(t *testing.T) {
	Convey("WriteSampleSheet writes a YAML sample sheet that Read can parse", t, func() {
		in := t.TempDir()
		out := t.TempDir()

		r1 := createFile(t, in, "sample1_R1.fastq.gz")
		r2 := createFile(t, in, "sample1_R2.fastq.gz")

		path, m, err := NewBuilder(nil).WriteSampleSheet(in, out)
		So(err, ShouldBeNil)
		So(path, ShouldEqual, filepath.Join(out, Basename))

		data, err := os.ReadFile(path)
		So(err, ShouldBeNil)
		So(string(data), ShouldEqual, fmt.Sprintf("sample1:\n    R1: %s\n    R2: %s\n", r1, r2))

		read, err := Read(path)
		So(err, ShouldBeNil)
		So(read, ShouldResemble, m)

		Convey("and writing again gives identical content", func() {
			_, _, err := NewBuilder(nil).WriteSampleSheet(in, out)
			So(err, ShouldBeNil)

			again, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(again, ShouldResemble, data)
		})
	})
}

func TestHasReadFiles(t *testing.T) {
	Convey("HasReadFiles reports whether any read files exist", t, func() {
		dir := t.TempDir()

		found, err := HasReadFiles(dir)
		So(err, ShouldBeNil)
		So(found, ShouldBeFalse)

		createFile(t, dir, "readme.md")

		found, err = HasReadFiles(dir)
		So(err, ShouldBeNil)
		So(found, ShouldBeFalse)

		sub := filepath.Join(dir, "nested")
		So(os.Mkdir(sub, 0o755), ShouldBeNil)
		createFile(t, sub, "anything.fq.gz")

		found, err = HasReadFiles(dir)
		So(err, ShouldBeNil)
		So(found, ShouldBeTrue)
	})
}

func TestVerify(t *testing.T) {
	Convey("Verify checks read files look like FASTQ", t, func() {
		dir := t.TempDir()

		plain := filepath.Join(dir, "a_R1.fastq")
		So(os.WriteFile(plain, []byte("@read1\nACGT\n+\nIIII\n"), 0o600), ShouldBeNil)

		compressed := filepath.Join(dir, "a_R2.fastq.gz")
		writeGzip(t, compressed, "@read1\nACGT\n+\nIIII\n")

		m := Manifest{"a": {R1: plain, R2: compressed}}
		So(Verify(m), ShouldBeNil)

		Convey("and rejects files that are not FASTQ", func() {
			bad := filepath.Join(dir, "b_R1.fastq.gz")
			writeGzip(t, bad, ">not a fastq\n")

			m["b"] = Sample{R1: bad}

			err := Verify(m)
			So(err, ShouldWrap, ErrNotFastq)
			So(err.Error(), ShouldContainSubstring, bad)
		})

		Convey("and rejects empty files", func() {
			m["c"] = Sample{R2: createFile(t, dir, "c_R2.fq")}

			So(Verify(m), ShouldWrap, ErrNotFastq)
		})
	})
}

func createFile(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	return path
}

func writeGzip(t *testing.T, path, content string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	gw := gzip.NewWriter(f)

	if _, err := gw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}

	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}

	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}
