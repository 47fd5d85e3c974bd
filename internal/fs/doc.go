// Package fs provides the filesystem seam used by vector save and load.
//
//   - [FileSystem]: the operations an atomic save and a load need
//   - [LocalFS]: production implementation on the os package
//   - [FaultyFS]: test wrapper injecting write, sync, close, rename and
//     short-read failures
//
// Production code uses fs.Default:
//
//	f, err := fs.Default.OpenFile(path, os.O_RDONLY, 0)
//
// Tests inject FaultyFS:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".hcv", fs.Fault{FailAfterBytes: 16})
//
// Remote storage goes through blobstore, which carries a context.
package fs
