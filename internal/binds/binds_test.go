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

package binds

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestArgs(t *testing.T) {
	Convey("Args binds workflow dirs, the input dir and database parent dirs", t, func() {
		s := Spec{
			WorkflowDir: "/opt/jovian/workflow",
			InputDir:    "/data/reads",
			Databases:   []string{"/db/genome/genome.fa", "/db/nt/nt", "/db/taxdb/"},
		}

		So(s.Args(), ShouldEqual, "--bind /opt/jovian/workflow/scripts/:/Jovian/scripts "+
			"--bind /opt/jovian/workflow/files/:/Jovian/files "+
			"--bind /data/reads:/data/reads "+
			"--bind /db/genome:/db/genome "+
			"--bind /db/nt:/db/nt "+
			"--bind /db/taxdb:/db/taxdb")
	})
}

func TestWithSharedMemory(t *testing.T) {
	Convey("WithSharedMemory only adds /run/shm when it is mounted", t, func() {
		yes := func(string) (bool, error) { return true, nil }
		no := func(string) (bool, error) { return false, nil }
		broken := func(string) (bool, error) { return false, errors.New("no mount table") }

		So(WithSharedMemory("--bind /a:/a", yes), ShouldEqual, "--bind /a:/a --bind /run/shm:/run/shm")
		So(WithSharedMemory("--bind /a:/a", no), ShouldEqual, "--bind /a:/a")
		So(WithSharedMemory("--bind /a:/a", broken), ShouldEqual, "--bind /a:/a")
	})

	Convey("Mounted consults the OS mount table", t, func() {
		ok, err := Mounted("/")
		So(err, ShouldBeNil)
		So(ok, ShouldBeTrue)
	})
}
