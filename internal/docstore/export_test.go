package docstore

var WithWriteFile = withWriteFile
